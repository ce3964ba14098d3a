// Package steam talks to the store's public JSON endpoints: app details
// (name and add-on list) and the paginated partner-event announcement feed.
package steam

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"modbase/internal/services"
)

// Event is one announcement in the partner-event feed.
type Event struct {
	GID              string           `json:"gid"`
	EventName        string           `json:"event_name"`
	AnnouncementBody AnnouncementBody `json:"announcement_body"`
}

// AnnouncementBody holds the BBCode body and its publish time.
type AnnouncementBody struct {
	Body     string `json:"body"`
	PostTime int64  `json:"posttime"`
}

// Posted returns the publish instant in UTC.
func (e Event) Posted() time.Time {
	return time.Unix(e.AnnouncementBody.PostTime, 0).UTC()
}

type eventsResponse struct {
	Events []Event `json:"events"`
}

// AppDetails is the subset of the app-details payload modbase reads.
type AppDetails struct {
	Name string  `json:"name"`
	DLC  []int64 `json:"dlc"`
}

type appDetailsEntry struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
}

// Client provides access to the store endpoints.
type Client struct {
	baseURL  string
	language string
	fetcher  Fetcher
}

// Option configures a Client.
type Option func(*Client)

// WithFetcher overrides the default colly-backed fetcher.
func WithFetcher(f Fetcher) Option {
	return func(c *Client) {
		if f != nil {
			c.fetcher = f
		}
	}
}

// New creates a store client rooted at baseURL.
func New(baseURL, language, userAgent string, timeout time.Duration, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("store base url required")
	}
	client := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		language: strings.TrimSpace(language),
		fetcher:  NewCollyFetcher(userAgent, timeout),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// BaseURL returns the normalized endpoint root.
func (c *Client) BaseURL() string { return c.baseURL }

// AppDetails fetches the name and add-on list of appID. A lookup the store
// reports as unsuccessful returns an error marked services.ErrNotFound.
func (c *Client) AppDetails(ctx context.Context, appID string) (*AppDetails, error) {
	appID = strings.TrimSpace(appID)
	if appID == "" {
		return nil, errors.New("app id must not be empty")
	}
	params := url.Values{}
	params.Set("appids", appID)
	endpoint := c.baseURL + "/api/appdetails?" + params.Encode()

	body, err := c.fetcher.Fetch(ctx, endpoint)
	if err != nil {
		return nil, services.Wrap(services.ErrCollaborator, "steam", "app details", "fetch "+appID, err)
	}
	var payload map[string]appDetailsEntry
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, services.Wrap(services.ErrCollaborator, "steam", "app details", "decode response", err)
	}
	entry, ok := payload[appID]
	if !ok || !entry.Success || len(entry.Data) == 0 {
		return nil, services.Wrap(services.ErrNotFound, "steam", "app details", fmt.Sprintf("no data for app %s", appID), nil)
	}
	var details AppDetails
	if err := json.Unmarshal(entry.Data, &details); err != nil {
		return nil, services.Wrap(services.ErrCollaborator, "steam", "app details", "decode data", err)
	}
	return &details, nil
}

// EventsPage fetches count announcements starting at offset. An empty slice
// means the feed is exhausted.
func (c *Client) EventsPage(ctx context.Context, appID string, offset, count int) ([]Event, error) {
	params := url.Values{}
	params.Set("clan_accountid", "0")
	params.Set("appid", appID)
	params.Set("offset", strconv.Itoa(offset))
	params.Set("count", strconv.Itoa(count))
	if c.language != "" {
		params.Set("l", c.language)
	}
	endpoint := c.baseURL + "/events/ajaxgetpartnereventspageable?" + params.Encode()

	body, err := c.fetcher.Fetch(ctx, endpoint)
	if err != nil {
		return nil, services.Wrap(services.ErrCollaborator, "steam", "events", fmt.Sprintf("fetch offset %d", offset), err)
	}
	var payload eventsResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, services.Wrap(services.ErrCollaborator, "steam", "events", "decode response", err)
	}
	return payload.Events, nil
}

// NewsURL is the public announcement page for an event.
func (c *Client) NewsURL(appID, gid string) string {
	return c.baseURL + "/news/app/" + appID + "/view/" + gid
}
