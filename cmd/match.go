package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/kilianp07/loadshare/app"
	"github.com/kilianp07/loadshare/core/events"
	"github.com/kilianp07/loadshare/core/matching"
	"github.com/kilianp07/loadshare/core/model"
	"github.com/kilianp07/loadshare/internal/eventbus"
)

type matchFlags struct {
	requestFile string
	origin      string
	destination string
	weight      float64
	company     string
	industry    string
	bracket     int
	save        bool
	shipmentID  string
}

var mf matchFlags

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Find shipments that can share a truck with a request",
	Long: `Match a shipment request against pending shipments on the same corridor.
The request is read from --request (yaml or json) or built from flags.
With --save the request is stored as a shipment and the resulting group
is persisted with its cost splits.`,
	RunE: runMatch,
}

func init() {
	f := matchCmd.Flags()
	f.StringVarP(&mf.requestFile, "request", "r", "", "request file (yaml or json)")
	f.StringVar(&mf.origin, "origin", "", "origin as lat,lng")
	f.StringVar(&mf.destination, "destination", "", "destination as lat,lng")
	f.Float64Var(&mf.weight, "weight", 0, "weight in kg")
	f.StringVar(&mf.company, "company", "", "requesting company id")
	f.StringVar(&mf.industry, "industry", "", "industry of the goods")
	f.IntVar(&mf.bracket, "bracket", 0, "revenue bracket 1-5")
	f.BoolVar(&mf.save, "save", false, "store the request and persist the matched group")
	f.StringVar(&mf.shipmentID, "shipment-id", "", "id of the stored request (random when empty)")
	rootCmd.AddCommand(matchCmd)
}

type matchOutput struct {
	model.MatchResult
	Saved *model.PersistedGroup `json:"saved_group,omitempty"`
}

func runMatch(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	req, err := mf.request()
	if err != nil {
		return err
	}
	return withService(ctx, func(svc *app.Service) error {
		var sub <-chan eventbus.Message
		if svc.Bus != nil {
			sub = svc.Bus.Subscribe(events.TopicLoadMatch)
		}
		res, err := svc.Engine.FindMatchingLoads(ctx, req)
		if err != nil {
			return err
		}
		drainEvents(svc, sub)

		out := matchOutput{MatchResult: res}
		if mf.save {
			pg, err := saveMatch(ctx, svc, req, res, mf.shipmentID)
			if err != nil {
				return err
			}
			out.Saved = &pg
		}
		return printJSON(cmd.OutOrStdout(), out)
	})
}

func drainEvents(svc *app.Service, sub <-chan eventbus.Message) {
	if sub == nil {
		return
	}
	for {
		select {
		case msg := <-sub:
			svc.Logger().Debugw("match event", map[string]any{"topic": msg.Topic, "payload": msg.Payload})
		default:
			return
		}
	}
}

// saveMatch stores the request as a shipment, binds it into the group and
// persists the group.
func saveMatch(ctx context.Context, svc *app.Service, req model.ShipmentRequest, res model.MatchResult, id string) (model.PersistedGroup, error) {
	if len(res.Matches) == 0 {
		return model.PersistedGroup{}, fmt.Errorf("no matches to save")
	}
	if id == "" {
		id = uuid.NewString()
	}
	rec := model.ShipmentRecord{
		ID:             id,
		Origin:         req.Origin,
		Destination:    req.Destination,
		WeightKg:       req.WeightKg,
		CompanyID:      req.CompanyID,
		Industry:       req.Industry,
		RevenueBracket: req.RevenueBracket,
		Status:         model.StatusPending,
	}
	if err := svc.Store.SaveShipment(ctx, rec); err != nil {
		return model.PersistedGroup{}, fmt.Errorf("store request: %w", err)
	}
	bound := matching.BindRequest(res, id)
	return svc.Engine.SaveMatchedLoadGroup(ctx, bound.LoadGroup, bound.CostSplit)
}

func (f matchFlags) request() (model.ShipmentRequest, error) {
	if f.requestFile != "" {
		data, err := os.ReadFile(f.requestFile)
		if err != nil {
			return model.ShipmentRequest{}, err
		}
		var req model.ShipmentRequest
		if err := yaml.Unmarshal(data, &req); err != nil {
			return model.ShipmentRequest{}, fmt.Errorf("decode request: %w", err)
		}
		return req, nil
	}
	origin, err := parsePoint(f.origin)
	if err != nil {
		return model.ShipmentRequest{}, fmt.Errorf("origin: %w", err)
	}
	dest, err := parsePoint(f.destination)
	if err != nil {
		return model.ShipmentRequest{}, fmt.Errorf("destination: %w", err)
	}
	return model.ShipmentRequest{
		Origin:         origin,
		Destination:    dest,
		WeightKg:       f.weight,
		CompanyID:      f.company,
		Industry:       model.Industry(f.industry),
		RevenueBracket: model.RevenueBracket(f.bracket),
	}, nil
}

// parsePoint reads "lat,lng".
func parsePoint(s string) (model.Point, error) {
	lat, lng, ok := strings.Cut(s, ",")
	if !ok {
		return model.Point{}, fmt.Errorf("expected lat,lng, got %q", s)
	}
	la, err := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil {
		return model.Point{}, fmt.Errorf("latitude: %w", err)
	}
	ln, err := strconv.ParseFloat(strings.TrimSpace(lng), 64)
	if err != nil {
		return model.Point{}, fmt.Errorf("longitude: %w", err)
	}
	return model.Point{Lat: la, Lng: ln}, nil
}
