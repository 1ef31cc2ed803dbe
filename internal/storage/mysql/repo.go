package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	mysqldrv "github.com/go-sql-driver/mysql"

	"github.com/xyd945/travel-ai-agent/internal/domain"
	"github.com/xyd945/travel-ai-agent/internal/shared"
)

func valStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}
func valInt(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}
func valInt64(v int64) any {
	if v == 0 {
		return nil
	}
	return v
}
func valF64(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}
func valJSON(v any) any {
	b, err := json.Marshal(v)
	if err != nil || string(b) == "null" {
		return nil
	}
	return string(b)
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

// Open builds the pooled handle the hosting process owns; callers Close it.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	cfg, err := mysqldrv.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse mysql dsn: %w", err)
	}
	cfg.ParseTime = true
	if cfg.Params == nil {
		cfg.Params = map[string]string{}
	}
	cfg.Params["charset"] = "utf8mb4"

	db, err := sql.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping mysql: %w", err)
	}
	return db, nil
}

func (r *Repo) UpsertHotel(ctx context.Context, h domain.HotelRecord) error {
	regionType := h.Region.Type
	if regionType == "" {
		regionType = domain.RegionTypeCity
	}
	var raw any
	if len(h.RawJSON) > 0 {
		raw = string(h.RawJSON)
	}
	_, err := r.db.ExecContext(ctx, upsertHotelSQL,
		h.ID,
		h.Name,
		shared.NormalizeName(h.Name),
		valInt64(h.Region.ID),
		regionType,
		h.Region.Name,
		shared.NormalizeName(h.Region.Name),
		strings.ToUpper(h.Region.CountryCode),
		valStr(h.Address),
		valInt(h.StarRating),
		valF64(h.Lat),
		valF64(h.Lon),
		valJSON(h.Images),
		valJSON(h.AmenityGroups),
		valJSON(h.DescriptionStruct),
		raw,
	)
	return err
}

func (r *Repo) FindByCity(ctx context.Context, city, countryCode string, limit int) ([]domain.HotelRecord, error) {
	if limit <= 0 {
		limit = domain.HotelQueryLimit
	}
	rows, err := r.db.QueryContext(ctx, findByCitySQL, domain.RegionTypeCity, city, countryCode, countryCode, limit)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

// FindByNameOrCity expects q.Name and q.City already normalized. Name and city
// predicates are OR-ed; the country code narrows the result.
func (r *Repo) FindByNameOrCity(ctx context.Context, q domain.HotelsQuery) ([]domain.HotelRecord, error) {
	var (
		or   []string
		args []any
	)
	if q.Name != "" {
		or = append(or, "name_norm LIKE ?")
		args = append(args, "%"+q.Name+"%")
	}
	if q.City != "" {
		or = append(or, "region_name_norm LIKE ?")
		args = append(args, "%"+q.City+"%")
	}
	if len(or) == 0 {
		return nil, domain.Invalid("name or city is required")
	}
	where := "(" + strings.Join(or, " OR ") + ")"
	if q.CountryCode != "" {
		where += " AND country_code = ?"
		args = append(args, q.CountryCode)
	}
	limit := q.Limit
	if limit <= 0 {
		limit = domain.HotelQueryLimit
	}
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, selectHotelSQL+"WHERE "+where+"\nORDER BY id\nLIMIT ?", args...)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

func (r *Repo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, countHotelsSQL).Scan(&n)
	return n, err
}

func (r *Repo) Ping(ctx context.Context) error { return r.db.PingContext(ctx) }

func collect(rows *sql.Rows) ([]domain.HotelRecord, error) {
	defer rows.Close()
	out := []domain.HotelRecord{}
	for rows.Next() {
		h, err := scanHotel(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func scanHotel(rows *sql.Rows) (domain.HotelRecord, error) {
	var h domain.HotelRecord
	var regionID, stars sql.NullInt64
	var lat, lon sql.NullFloat64
	var address sql.NullString
	var imagesJSON, amenitiesJSON, descJSON []byte

	if err := rows.Scan(
		&h.ID, &h.Name,
		&regionID, &h.Region.Type, &h.Region.Name, &h.Region.CountryCode,
		&address, &stars, &lat, &lon,
		&imagesJSON, &amenitiesJSON, &descJSON,
	); err != nil {
		return domain.HotelRecord{}, err
	}
	if regionID.Valid {
		h.Region.ID = regionID.Int64
	}
	if address.Valid {
		h.Address = address.String
	}
	if stars.Valid {
		s := int(stars.Int64)
		h.StarRating = &s
	}
	if lat.Valid && lon.Valid {
		la, lo := lat.Float64, lon.Float64
		h.Lat, h.Lon = &la, &lo
	}
	if len(imagesJSON) > 0 {
		_ = json.Unmarshal(imagesJSON, &h.Images)
	}
	if len(amenitiesJSON) > 0 {
		_ = json.Unmarshal(amenitiesJSON, &h.AmenityGroups)
	}
	if len(descJSON) > 0 {
		_ = json.Unmarshal(descJSON, &h.DescriptionStruct)
	}
	return h, nil
}
