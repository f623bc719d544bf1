package forest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ParkerCase/wildlife-conservation-tracker-sub003/lib/restyutil"

	"github.com/go-resty/resty/v2"
)

// Provider computes per tile vegetation statistics for an AOI.
type Provider interface {
	TileStats(ctx context.Context, aoi AOI, window Windows) ([]TileStat, error)
}

type HostedProviderOptions struct {
	// base url of the imagery processing api
	Endpoint string
	ApiKey   string
	// tile edge length in meters, the provider picks one when 0
	TileSizeM int
	Timeout   time.Duration
	// when set, requests and responses are dumped here in debug mode
	Dump restyutil.InstrumentOutput
}

// HostedProvider asks a hosted imagery api for NDVI composites over both
// windows, the heavy geospatial work happens remotely.
type HostedProvider struct {
	client    *resty.Client
	tileSizeM int
}

func NewHostedProvider(opts HostedProviderOptions) (HostedProvider, error) {
	if opts.Endpoint == "" {
		return HostedProvider{}, fmt.Errorf("provider endpoint is required")
	}
	if opts.Timeout == 0 {
		opts.Timeout = 2 * time.Minute
	}

	client := resty.New()
	client.SetBaseURL(strings.TrimRight(opts.Endpoint, "/"))
	client.SetTimeout(opts.Timeout)
	client.SetHeader("Accept", "application/json")
	if opts.ApiKey != "" {
		client.SetAuthToken(opts.ApiKey)
	}
	client.SetRetryCount(2)
	client.AddRetryCondition(func(res *resty.Response, err error) bool {
		return err == nil && res.StatusCode() >= 500
	})
	restyutil.InstrumentClient(client, tracer, opts.Dump)

	return HostedProvider{
		client:    client,
		tileSizeM: opts.TileSizeM,
	}, nil
}

type tileStatsRequest struct {
	AOI       AOI    `json:"aoi"`
	Baseline  Window `json:"baseline"`
	Current   Window `json:"current"`
	Index     string `json:"index"`
	TileSizeM int    `json:"tile_size_m,omitempty"`
}

type tileStatsResponse struct {
	Tiles []TileStat `json:"tiles"`
}

type providerError struct {
	Error string `json:"error"`
}

func (p HostedProvider) TileStats(ctx context.Context, aoi AOI, window Windows) ([]TileStat, error) {
	var out tileStatsResponse
	var failure providerError
	res, err := p.client.R().
		SetContext(ctx).
		SetBody(tileStatsRequest{
			AOI:       aoi,
			Baseline:  window.Baseline,
			Current:   window.Current,
			Index:     "ndvi",
			TileSizeM: p.tileSizeM,
		}).
		SetResult(&out).
		SetError(&failure).
		Post("/v1/change/tiles")
	if err != nil {
		return nil, fmt.Errorf("tile stats request: %w", err)
	}
	if res.IsError() {
		if failure.Error != "" {
			return nil, fmt.Errorf("tile stats: %s: %s", res.Status(), failure.Error)
		}
		return nil, fmt.Errorf("tile stats: %s", res.Status())
	}
	return out.Tiles, nil
}
