package db

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/david/goodworks/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const quoteCols = `id, text, reference, theme, tags, context`

func (s *Store) ListQuotes(ctx context.Context) ([]models.Quote, error) {
	rows, err := s.pool.Query(ctx, "SELECT "+quoteCols+" FROM quotes ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("query quotes failed: %w", err)
	}
	defer rows.Close()

	var quotes []models.Quote
	for rows.Next() {
		var q models.Quote
		var quoteContext *string
		if err := rows.Scan(&q.ID, &q.Text, &q.Reference, &q.Theme, &q.Tags, &quoteContext); err != nil {
			return nil, fmt.Errorf("scan quote failed: %w", err)
		}
		if quoteContext != nil {
			q.Context = *quoteContext
		}
		quotes = append(quotes, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}
	return quotes, nil
}

// opportunityCols is the column list shared by every opportunity query.
const opportunityCols = `id, organization_name, organization_type, opportunity_title, description,
	time_commitment, location, skills_needed, cause_categories, related_quotes, urgency_level,
	contact_info, website_url, application_url, verified_status, active_status, image_url,
	highlight_reason, date_added`

type opportunityRow struct {
	ID               string
	OrganizationName string
	OrganizationType *string
	Title            string
	Description      string
	TimeCommitment   *string
	Location         []byte
	SkillsNeeded     []string
	CauseCategories  []string
	RelatedQuotes    []string
	UrgencyLevel     *string
	ContactInfo      []byte
	WebsiteURL       *string
	ApplicationURL   *string
	VerifiedStatus   bool
	ActiveStatus     *bool
	ImageURL         *string
	HighlightReason  *string
	DateAdded        time.Time
}

func scanOpportunity(scan func(dest ...any) error) (models.Opportunity, error) {
	var r opportunityRow
	err := scan(
		&r.ID, &r.OrganizationName, &r.OrganizationType, &r.Title, &r.Description,
		&r.TimeCommitment, &r.Location, &r.SkillsNeeded, &r.CauseCategories, &r.RelatedQuotes, &r.UrgencyLevel,
		&r.ContactInfo, &r.WebsiteURL, &r.ApplicationURL, &r.VerifiedStatus, &r.ActiveStatus, &r.ImageURL,
		&r.HighlightReason, &r.DateAdded,
	)
	if err != nil {
		return models.Opportunity{}, err
	}
	return r.toModel(), nil
}

// toModel applies the defaults used for rows written by other tools: unknown
// causes are dropped and missing enums fall back to their most common value.
func (r opportunityRow) toModel() models.Opportunity {
	o := models.Opportunity{
		ID:               r.ID,
		OrganizationName: r.OrganizationName,
		OrganizationType: models.NormalizeOrganizationType(deref(r.OrganizationType)),
		Title:            r.Title,
		Description:      r.Description,
		TimeCommitment:   models.CommitmentOneTime,
		Location:         decodeLocation(r.Location),
		SkillsNeeded:     nonNil(r.SkillsNeeded),
		CauseCategories:  models.ValidCauseCategories(r.CauseCategories),
		RelatedQuotes:    nonNil(r.RelatedQuotes),
		UrgencyLevel:     models.UrgencyOngoing,
		WebsiteURL:       deref(r.WebsiteURL),
		ApplicationURL:   deref(r.ApplicationURL),
		VerifiedStatus:   r.VerifiedStatus,
		ActiveStatus:     r.ActiveStatus == nil || *r.ActiveStatus,
		ImageURL:         deref(r.ImageURL),
		HighlightReason:  deref(r.HighlightReason),
		DateAdded:        r.DateAdded,
	}
	if tc, err := models.ParseTimeCommitment(deref(r.TimeCommitment)); err == nil {
		o.TimeCommitment = tc
	}
	if u, err := models.ParseUrgencyLevel(deref(r.UrgencyLevel)); err == nil {
		o.UrgencyLevel = u
	}
	if len(r.ContactInfo) > 0 {
		_ = json.Unmarshal(r.ContactInfo, &o.ContactInfo)
	}
	return o
}

func decodeLocation(raw []byte) models.Location {
	var loc struct {
		City    string `json:"city"`
		State   string `json:"state"`
		Country string `json:"country"`
		Mode    string `json:"mode"`
	}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &loc)
	}
	mode, err := models.ParseLocationMode(loc.Mode)
	if err != nil {
		mode = models.ModeRemote
	}
	return models.Location{City: loc.City, State: loc.State, Country: loc.Country, Mode: mode}
}

func (s *Store) ListOpportunities(ctx context.Context) ([]models.Opportunity, error) {
	rows, err := s.pool.Query(ctx, "SELECT "+opportunityCols+" FROM opportunities ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("query opportunities failed: %w", err)
	}
	defer rows.Close()

	var opps []models.Opportunity
	for rows.Next() {
		o, err := scanOpportunity(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan opportunity failed: %w", err)
		}
		opps = append(opps, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}
	return opps, nil
}

const eventCols = `external_id, headline, summary, category, region, source, url, published_at,
	related_quote_ids, related_opportunity_ids`

type eventRow struct {
	ExternalID            string
	Headline              string
	Summary               *string
	Category              *string
	Region                *string
	Source                *string
	URL                   *string
	PublishedAt           time.Time
	RelatedQuoteIDs       []string
	RelatedOpportunityIDs []string
}

func (r eventRow) toModel() models.CurrentEvent {
	e := models.CurrentEvent{
		ID:                    r.ExternalID,
		Headline:              r.Headline,
		Summary:               deref(r.Summary),
		Category:              models.CauseCommunity,
		Region:                deref(r.Region),
		Source:                deref(r.Source),
		URL:                   deref(r.URL),
		PublishedAt:           r.PublishedAt,
		RelatedQuoteIDs:       nonNil(r.RelatedQuoteIDs),
		RelatedOpportunityIDs: nonNil(r.RelatedOpportunityIDs),
	}
	if c, err := models.ParseCauseCategory(deref(r.Category)); err == nil {
		e.Category = c
	}
	if e.Region == "" {
		e.Region = e.Source
	}
	if e.Region == "" {
		e.Region = "Global"
	}
	return e
}

// ListRecentEvents returns at most limit events, newest first.
func (s *Store) ListRecentEvents(ctx context.Context, limit int) ([]models.CurrentEvent, error) {
	rows, err := s.pool.Query(ctx, "SELECT "+eventCols+" FROM news_events ORDER BY published_at DESC LIMIT $1", limit)
	if err != nil {
		return nil, fmt.Errorf("query news events failed: %w", err)
	}
	defer rows.Close()

	var events []models.CurrentEvent
	for rows.Next() {
		var r eventRow
		if err := rows.Scan(&r.ExternalID, &r.Headline, &r.Summary, &r.Category, &r.Region, &r.Source, &r.URL,
			&r.PublishedAt, &r.RelatedQuoteIDs, &r.RelatedOpportunityIDs); err != nil {
			return nil, fmt.Errorf("scan news event failed: %w", err)
		}
		events = append(events, r.toModel())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}
	return events, nil
}

// eventURL returns the stored url for an event, treating http(s) ids as urls.
func eventURL(e models.CurrentEvent) string {
	if e.URL != "" {
		return e.URL
	}
	if strings.HasPrefix(e.ID, "http://") || strings.HasPrefix(e.ID, "https://") {
		return e.ID
	}
	return ""
}

func (s *Store) UpsertEvents(ctx context.Context, events []models.CurrentEvent) error {
	if len(events) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, e := range events {
		batch.Queue(`
			INSERT INTO news_events (external_id, headline, summary, category, region, source, url, published_at,
				related_quote_ids, related_opportunity_ids)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			ON CONFLICT (external_id) DO UPDATE SET
				headline = EXCLUDED.headline,
				summary = EXCLUDED.summary,
				category = EXCLUDED.category,
				region = EXCLUDED.region,
				source = EXCLUDED.source,
				url = EXCLUDED.url,
				published_at = EXCLUDED.published_at,
				related_quote_ids = EXCLUDED.related_quote_ids,
				related_opportunity_ids = EXCLUDED.related_opportunity_ids
		`, e.ID, e.Headline, nilIfEmpty(e.Summary), string(e.Category), nilIfEmpty(e.Region), nilIfEmpty(e.Source),
			nilIfEmpty(eventURL(e)), e.PublishedAt, nonNil(e.RelatedQuoteIDs), nonNil(e.RelatedOpportunityIDs))
	}

	if err := s.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("upsert news events failed: %w", err)
	}
	return nil
}

func (s *Store) UpsertQuotes(ctx context.Context, quotes []models.Quote) error {
	if len(quotes) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, q := range quotes {
		batch.Queue(`
			INSERT INTO quotes (id, text, reference, theme, tags, context)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (id) DO UPDATE SET
				text = EXCLUDED.text,
				reference = EXCLUDED.reference,
				theme = EXCLUDED.theme,
				tags = EXCLUDED.tags,
				context = EXCLUDED.context,
				updated_at = NOW()
		`, q.ID, q.Text, q.Reference, q.Theme, nonNil(q.Tags), nilIfEmpty(q.Context))
	}

	if err := s.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("upsert quotes failed: %w", err)
	}
	return nil
}

func (s *Store) UpsertOpportunities(ctx context.Context, opps []models.Opportunity) error {
	if len(opps) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, o := range opps {
		location, err := json.Marshal(o.Location)
		if err != nil {
			return fmt.Errorf("encode location for %s: %w", o.ID, err)
		}
		contact, err := json.Marshal(o.ContactInfo)
		if err != nil {
			return fmt.Errorf("encode contact info for %s: %w", o.ID, err)
		}
		causes := make([]string, len(o.CauseCategories))
		for i, c := range o.CauseCategories {
			causes[i] = string(c)
		}
		dateAdded := o.DateAdded
		if dateAdded.IsZero() {
			dateAdded = time.Now().UTC()
		}

		batch.Queue(`
			INSERT INTO opportunities (id, organization_name, organization_type, opportunity_title, description,
				time_commitment, location, skills_needed, cause_categories, related_quotes, urgency_level,
				contact_info, website_url, application_url, verified_status, active_status, image_url,
				highlight_reason, date_added)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
			ON CONFLICT (id) DO UPDATE SET
				organization_name = EXCLUDED.organization_name,
				organization_type = EXCLUDED.organization_type,
				opportunity_title = EXCLUDED.opportunity_title,
				description = EXCLUDED.description,
				time_commitment = EXCLUDED.time_commitment,
				location = EXCLUDED.location,
				skills_needed = EXCLUDED.skills_needed,
				cause_categories = EXCLUDED.cause_categories,
				related_quotes = EXCLUDED.related_quotes,
				urgency_level = EXCLUDED.urgency_level,
				contact_info = EXCLUDED.contact_info,
				website_url = EXCLUDED.website_url,
				application_url = EXCLUDED.application_url,
				verified_status = EXCLUDED.verified_status,
				active_status = EXCLUDED.active_status,
				image_url = EXCLUDED.image_url,
				highlight_reason = EXCLUDED.highlight_reason,
				updated_at = NOW()
		`, o.ID, o.OrganizationName, string(o.OrganizationType), o.Title, o.Description,
			string(o.TimeCommitment), location, nonNil(o.SkillsNeeded), causes, nonNil(o.RelatedQuotes), string(o.UrgencyLevel),
			contact, nilIfEmpty(o.WebsiteURL), nilIfEmpty(o.ApplicationURL), o.VerifiedStatus, o.ActiveStatus, nilIfEmpty(o.ImageURL),
			nilIfEmpty(o.HighlightReason), dateAdded)
	}

	if err := s.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("upsert opportunities failed: %w", err)
	}
	return nil
}

func (s *Store) InsertInterest(ctx context.Context, interest models.Interest) error {
	metadata, err := json.Marshal(interest.Metadata())
	if err != nil {
		return fmt.Errorf("encode interest metadata: %w", err)
	}
	createdAt := interest.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO opportunity_interest (id, opportunity_id, user_id, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, interest.ID, interest.OpportunityID, nilIfEmpty(interest.UserID), metadata, createdAt)
	if err != nil {
		return fmt.Errorf("insert interest failed: %w", err)
	}
	return nil
}

// CountRows reports the number of rows per domain table.
func (s *Store) CountRows(ctx context.Context) (map[string]int64, error) {
	counts := make(map[string]int64, len(countedTables))
	for _, table := range countedTables {
		var n int64
		if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
			return nil, fmt.Errorf("count %s failed: %w", table, err)
		}
		counts[table] = n
	}
	return counts, nil
}

var countedTables = []string{"quotes", "opportunities", "news_events", "opportunity_interest"}

// CountedTables lists the tables CountRows reports on, in display order.
func CountedTables() []string {
	out := make([]string, len(countedTables))
	copy(out, countedTables)
	return out
}

// nilIfEmpty returns nil for empty strings so NULL is stored in DB.
func nilIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
