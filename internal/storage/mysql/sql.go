package mysql

const upsertHotelSQL = `
INSERT INTO hotels
  (id, name, name_norm, region_id, region_type, region_name, region_name_norm, country_code,
   address, star_rating, lat, lon, images, amenity_groups, description_struct, raw)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  name               = VALUES(name),
  name_norm          = VALUES(name_norm),
  region_id          = VALUES(region_id),
  region_type        = VALUES(region_type),
  region_name        = VALUES(region_name),
  region_name_norm   = VALUES(region_name_norm),
  country_code       = VALUES(country_code),
  address            = VALUES(address),
  star_rating        = VALUES(star_rating),
  lat                = VALUES(lat),
  lon                = VALUES(lon),
  images             = VALUES(images),
  amenity_groups     = VALUES(amenity_groups),
  description_struct = VALUES(description_struct),
  raw                = VALUES(raw),
  updated_at         = CURRENT_TIMESTAMP
`

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

// Column order must match scanHotel.
const selectHotelSQL = `
SELECT
  id, name, region_id, region_type, region_name, country_code,
  address, star_rating, lat, lon, images, amenity_groups, description_struct
FROM hotels
`

// region_name compares under the table's ai_ci collation.
const findByCitySQL = selectHotelSQL + `
WHERE region_type = ?
  AND region_name = ?
  AND (? = '' OR country_code = ?)
ORDER BY id
LIMIT ?
`

const countHotelsSQL = `SELECT COUNT(*) FROM hotels`
