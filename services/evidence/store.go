package evidence

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ParkerCase/wildlife-conservation-tracker-sub003/lib/threat"
	"github.com/ParkerCase/wildlife-conservation-tracker-sub003/lib/timezone"
	"github.com/ParkerCase/wildlife-conservation-tracker-sub003/services/evidence/db"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("wildlife-tracker/services/evidence")

var ErrNotFound = errors.New("evidence package not found")

// Package is the archived record of one assessment of a listing.
type Package struct {
	ID          string            `json:"id"`
	Listing     threat.Listing    `json:"listing"`
	Assessment  threat.Assessment `json:"assessment"`
	ContentHash string            `json:"content_hash"`
	CapturedAt  time.Time         `json:"captured_at"`
	FirstSeen   time.Time         `json:"first_seen"`
	LastSeen    time.Time         `json:"last_seen"`
}

type ScanRun struct {
	ID         string    `json:"id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Listings   int       `json:"listings"`
	Threats    int       `json:"threats"`
	Alerts     int       `json:"alerts"`
	Errors     []string  `json:"errors,omitempty"`
}

type Store struct {
	db  *sql.DB
	qry *db.Queries
}

func NewStore(database *sql.DB) Store {
	return Store{
		db:  database,
		qry: db.New(database),
	}
}

// the fields that identify what a listing showed at capture time
type canonicalListing struct {
	Platform    string  `json:"platform"`
	URL         string  `json:"url"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Currency    string  `json:"currency"`
	Seller      string  `json:"seller"`
	Location    string  `json:"location"`
	ImageURL    string  `json:"image_url"`
}

// ContentHash is the hex sha256 of the canonical json of a listing.
func ContentHash(l threat.Listing) string {
	buff, _ := json.Marshal(canonicalListing{
		Platform:    l.Platform,
		URL:         l.URL,
		Title:       l.Title,
		Description: l.Description,
		Price:       l.Price,
		Currency:    l.Currency,
		Seller:      l.Seller,
		Location:    l.Location,
		ImageURL:    l.ImageURL,
	})
	sum := sha256.Sum256(buff)
	return hex.EncodeToString(sum[:])
}

// Archive stores the listing and an evidence package for its assessment.
// Capturing an unchanged listing again on the same day returns the
// package already stored instead of creating a new one.
func (s Store) Archive(ctx context.Context, listing threat.Listing, assessment threat.Assessment) (Package, error) {
	ctx, span := tracer.Start(ctx, "Archive")
	defer span.End()
	span.SetAttributes(attribute.String("listing", listing.ID))

	if listing.ID == "" {
		listing.ID = threat.ListingID(listing.Platform, listing.URL)
	}

	pkg, err := s.archive(ctx, listing, assessment)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to archive")
		return Package{}, fmt.Errorf("archive %s: %w", listing.ID, err)
	}
	return pkg, nil
}

func (s Store) archive(ctx context.Context, listing threat.Listing, assessment threat.Assessment) (Package, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Package{}, err
	}
	defer tx.Rollback()
	txqry := s.qry.WithTx(tx)

	now := timezone.Now()
	err = txqry.UpsertListing(ctx, db.UpsertListingParams{
		ID:          listing.ID,
		Platform:    listing.Platform,
		Title:       listing.Title,
		Description: listing.Description,
		Price:       listing.Price,
		Currency:    listing.Currency,
		PriceText:   listing.PriceText,
		Url:         listing.URL,
		Seller:      listing.Seller,
		Location:    listing.Location,
		ImageUrl:    listing.ImageURL,
		Keyword:     listing.Keyword,
		FirstSeen:   now.Unix(),
		LastSeen:    now.Unix(),
	})
	if err != nil {
		return Package{}, err
	}
	row, err := txqry.GetListing(ctx, listing.ID)
	if err != nil {
		return Package{}, err
	}

	hash := ContentHash(listing)
	startOfDay := timezone.StartOfDay(now)
	existing, err := txqry.FindEvidenceByHash(ctx, db.FindEvidenceByHashParams{
		ListingID:   listing.ID,
		ContentHash: hash,
		After:       startOfDay.Unix(),
		Before:      startOfDay.AddDate(0, 0, 1).Unix(),
	})
	if err == nil {
		if err := tx.Commit(); err != nil {
			return Package{}, err
		}
		return toPackage(row, existing)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return Package{}, err
	}

	indicators, err := json.Marshal(assessment.Indicators)
	if err != nil {
		return Package{}, err
	}
	species := assessment.Species
	if species == nil {
		species = []string{}
	}
	speciesJson, err := json.Marshal(species)
	if err != nil {
		return Package{}, err
	}

	params := db.InsertEvidenceParams{
		ID:          uuid.NewString(),
		ListingID:   listing.ID,
		Score:       int64(assessment.Score),
		RuleScore:   int64(assessment.RuleScore),
		Level:       int64(assessment.Level),
		Indicators:  string(indicators),
		Species:     string(speciesJson),
		Language:    assessment.Language,
		Reviewed:    assessment.Reviewed,
		Rationale:   assessment.Rationale,
		ContentHash: hash,
		CapturedAt:  now.Unix(),
	}
	err = txqry.InsertEvidence(ctx, params)
	if err != nil {
		return Package{}, err
	}
	if err := tx.Commit(); err != nil {
		return Package{}, err
	}

	return toPackage(row, db.Evidence(params))
}

func fromUnix(sec int64) time.Time {
	return time.Unix(sec, 0).In(timezone.Location)
}

func toListing(row db.Listing) threat.Listing {
	return threat.Listing{
		ID:          row.ID,
		Platform:    row.Platform,
		Title:       row.Title,
		Description: row.Description,
		Price:       row.Price,
		Currency:    row.Currency,
		PriceText:   row.PriceText,
		URL:         row.Url,
		Seller:      row.Seller,
		Location:    row.Location,
		ImageURL:    row.ImageUrl,
		Keyword:     row.Keyword,
		ScrapedAt:   fromUnix(row.LastSeen),
	}
}

func toPackage(listing db.Listing, row db.Evidence) (Package, error) {
	var indicators []threat.Indicator
	if err := json.Unmarshal([]byte(row.Indicators), &indicators); err != nil {
		return Package{}, fmt.Errorf("decode indicators of %s: %w", row.ID, err)
	}
	var species []string
	if err := json.Unmarshal([]byte(row.Species), &species); err != nil {
		return Package{}, fmt.Errorf("decode species of %s: %w", row.ID, err)
	}
	if len(species) == 0 {
		species = nil
	}

	return Package{
		ID:      row.ID,
		Listing: toListing(listing),
		Assessment: threat.Assessment{
			Score:      int(row.Score),
			Level:      threat.Level(row.Level),
			RuleScore:  int(row.RuleScore),
			Indicators: indicators,
			Species:    species,
			Language:   row.Language,
			Reviewed:   row.Reviewed,
			Rationale:  row.Rationale,
		},
		ContentHash: row.ContentHash,
		CapturedAt:  fromUnix(row.CapturedAt),
		FirstSeen:   fromUnix(listing.FirstSeen),
		LastSeen:    fromUnix(listing.LastSeen),
	}, nil
}

func (s Store) Get(ctx context.Context, id string) (Package, error) {
	row, err := s.qry.GetEvidence(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Package{}, ErrNotFound
	}
	if err != nil {
		return Package{}, err
	}
	listing, err := s.qry.GetListing(ctx, row.ListingID)
	if err != nil {
		return Package{}, err
	}
	return toPackage(listing, row)
}

// Recent returns the newest packages at or above minLevel.
func (s Store) Recent(ctx context.Context, minLevel threat.Level, limit int) ([]Package, error) {
	ctx, span := tracer.Start(ctx, "Recent")
	defer span.End()

	if limit <= 0 {
		limit = 50
	}
	rows, err := s.qry.RecentEvidence(ctx, db.RecentEvidenceParams{
		MinLevel: int64(minLevel),
		Limit:    int64(limit),
	})
	if err != nil {
		return nil, err
	}

	listings := map[string]db.Listing{}
	packages := make([]Package, 0, len(rows))
	for _, row := range rows {
		listing, ok := listings[row.ListingID]
		if !ok {
			listing, err = s.qry.GetListing(ctx, row.ListingID)
			if err != nil {
				return nil, err
			}
			listings[row.ListingID] = listing
		}
		pkg, err := toPackage(listing, row)
		if err != nil {
			return nil, err
		}
		packages = append(packages, pkg)
	}
	return packages, nil
}

type PlatformCount struct {
	Platform string `json:"platform"`
	Listings int    `json:"listings"`
	Evidence int    `json:"evidence"`
}

func (s Store) ByPlatform(ctx context.Context) ([]PlatformCount, error) {
	rows, err := s.qry.CountByPlatform(ctx)
	if err != nil {
		return nil, err
	}
	counts := make([]PlatformCount, len(rows))
	for i, r := range rows {
		counts[i] = PlatformCount{
			Platform: r.Platform,
			Listings: int(r.Listings),
			Evidence: int(r.Evidence),
		}
	}
	return counts, nil
}

type Stats struct {
	Listings int `json:"listings"`
	Evidence int `json:"evidence"`
	// keyed by level name, every level is present
	ByLevel  map[string]int `json:"by_level"`
	LastScan *ScanRun       `json:"last_scan,omitempty"`
}

func (s Store) Stats(ctx context.Context) (Stats, error) {
	listings, err := s.qry.CountListings(ctx)
	if err != nil {
		return Stats{}, err
	}
	levels, err := s.qry.CountEvidenceByLevel(ctx)
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{
		Listings: int(listings),
		ByLevel:  map[string]int{},
	}
	for l := threat.LevelLow; l <= threat.LevelCritical; l++ {
		stats.ByLevel[l.String()] = 0
	}
	for _, row := range levels {
		stats.ByLevel[threat.Level(row.Level).String()] += int(row.Count)
		stats.Evidence += int(row.Count)
	}

	scans, err := s.RecentScans(ctx, 1)
	if err != nil {
		return Stats{}, err
	}
	if len(scans) > 0 {
		stats.LastScan = &scans[0]
	}
	return stats, nil
}

func (s Store) RecordScan(ctx context.Context, run ScanRun) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	return s.qry.InsertScanRun(ctx, db.InsertScanRunParams{
		ID:         run.ID,
		StartedAt:  run.StartedAt.Unix(),
		FinishedAt: run.FinishedAt.Unix(),
		Listings:   int64(run.Listings),
		Threats:    int64(run.Threats),
		Alerts:     int64(run.Alerts),
		Errors:     strings.Join(run.Errors, "\n"),
	})
}

func (s Store) RecentScans(ctx context.Context, limit int) ([]ScanRun, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.qry.RecentScanRuns(ctx, int64(limit))
	if err != nil {
		return nil, err
	}
	runs := make([]ScanRun, len(rows))
	for i, r := range rows {
		var errs []string
		if r.Errors != "" {
			errs = strings.Split(r.Errors, "\n")
		}
		runs[i] = ScanRun{
			ID:         r.ID,
			StartedAt:  fromUnix(r.StartedAt),
			FinishedAt: fromUnix(r.FinishedAt),
			Listings:   int(r.Listings),
			Threats:    int(r.Threats),
			Alerts:     int(r.Alerts),
			Errors:     errs,
		}
	}
	return runs, nil
}

// TableCheck is the outcome of reading one table.
type TableCheck struct {
	Table string
	Rows  int
	Err   error
}

// Check reads from every table, it is the smoke test behind the
// "db check" command.
func (s Store) Check(ctx context.Context) []TableCheck {
	checks := make([]TableCheck, len(db.Tables))
	for i, table := range db.Tables {
		checks[i].Table = table
		row := s.db.QueryRowContext(ctx, fmt.Sprintf("select count(*) from %s", table))
		var count int64
		checks[i].Err = row.Scan(&count)
		checks[i].Rows = int(count)
	}
	return checks
}

func (s Store) Ping(ctx context.Context) error {
	var errs []error
	for _, c := range s.Check(ctx) {
		if c.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", c.Table, c.Err))
		}
	}
	return errors.Join(errs...)
}
