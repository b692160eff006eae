package postgres

const corridorQuery = `
WITH corridor AS (
    SELECT ST_MakeLine(
        ST_SetSRID(ST_MakePoint($1, $2), 4326),
        ST_SetSRID(ST_MakePoint($3, $4), 4326)
    )::geography AS line
)
SELECT s.id, s.company_id,
       ST_Y(s.origin::geometry), ST_X(s.origin::geometry),
       ST_Y(s.destination::geometry), ST_X(s.destination::geometry),
       s.weight, s.industry, s.revenue_bracket, s.status
FROM shipments s, corridor c
WHERE s.status = 'pending'
  AND s.company_id <> $5
  AND ST_DWithin(s.origin, c.line, $6)
  AND ST_DWithin(s.destination, c.line, $6)
ORDER BY s.created_at, s.id`

const shipmentQuery = `
SELECT id, company_id,
       ST_Y(origin::geometry), ST_X(origin::geometry),
       ST_Y(destination::geometry), ST_X(destination::geometry),
       weight, industry, revenue_bracket, status
FROM shipments
WHERE id = $1`

const upsertShipment = `
INSERT INTO shipments (id, company_id, origin, destination, weight, industry, revenue_bracket, status)
VALUES ($1, $2,
        ST_SetSRID(ST_MakePoint($3, $4), 4326)::geography,
        ST_SetSRID(ST_MakePoint($5, $6), 4326)::geography,
        $7, $8, $9, $10)
ON CONFLICT (id) DO UPDATE SET
    company_id = EXCLUDED.company_id,
    origin = EXCLUDED.origin,
    destination = EXCLUDED.destination,
    weight = EXCLUDED.weight,
    industry = EXCLUDED.industry,
    revenue_bracket = EXCLUDED.revenue_bracket,
    status = EXCLUDED.status`

// insertGroup derives the route from the first member when none is given,
// and the distance from the route when unknown.
const insertGroup = `
INSERT INTO crs_groups (id, shipment_ids, total_weight, total_cost, distance_meters, route_linestring)
SELECT $1, $2, $3, $4, COALESCE($5::double precision, ST_Length(r.line)), r.line
FROM (
    SELECT COALESCE(
        ST_GeogFromText(NULLIF($6::text, '')),
        (SELECT ST_MakeLine(s.origin::geometry, s.destination::geometry)::geography
         FROM shipments s WHERE s.id = $7)
    ) AS line
) r
RETURNING distance_meters, COALESCE(ST_AsText(route_linestring), ''), created_at`

const insertSplit = `
INSERT INTO cost_splits (shipment_id, company_id, cost, group_id, position)
VALUES ($1, $2, $3, $4, $5)`

const markMatched = `
UPDATE shipments SET status = 'matched' WHERE id = ANY($1)`

const groupQuery = `
SELECT id, shipment_ids, total_weight, total_cost, distance_meters,
       COALESCE(ST_AsText(route_linestring), ''), created_at
FROM crs_groups
WHERE id = $1`

const splitQuery = `
SELECT shipment_id, company_id, cost, group_id
FROM cost_splits
WHERE shipment_id = $1`

const groupSplitsQuery = `
SELECT shipment_id, company_id, cost, group_id
FROM cost_splits
WHERE group_id = $1
ORDER BY position`
