// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 rdlvis Contributors

// Package sparql pages a SPARQL endpoint and turns its results into a
// snapshot store.
package sparql

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/iso15926vis/rdlvis/internal/metrics"
	"github.com/iso15926vis/rdlvis/internal/rdf"
	rdlerr "github.com/iso15926vis/rdlvis/pkg/errors"
)

const (
	DefaultBatchSize = 10000
	DefaultBaseIRI   = "http://data.15926.org/iso/"

	resultsMediaType = "application/sparql-results+json"
	maxErrorBody     = 4 << 10
)

// Options configures a Fetcher.
type Options struct {
	Endpoint  string
	Graphs    []string
	BatchSize int
	// BaseIRI resolves ids that are not absolute http(s) IRIs.
	BaseIRI string
	// Query replaces ClassQuery. It must select ?id ?predicate ?object or
	// the ClassQuery columns, and must not carry its own LIMIT/OFFSET.
	Query    string
	Username string
	Password string
	Timeout  time.Duration
	Client   *http.Client
}

// Result summarizes a fetch.
type Result struct {
	Store   *rdf.Store
	Pages   int
	Rows    int
	Skipped int
}

// Fetcher pulls triples from a SPARQL endpoint.
type Fetcher struct {
	opts   Options
	client *http.Client
}

// New validates opts and returns a Fetcher.
func New(opts Options) (*Fetcher, error) {
	u, err := url.Parse(opts.Endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, rdlerr.New(rdlerr.CodeSourceRequestInvalid, "sparql endpoint must be an http(s) URL",
			rdlerr.Field("endpoint", opts.Endpoint))
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.BaseIRI == "" {
		opts.BaseIRI = DefaultBaseIRI
	}

	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	return &Fetcher{opts: opts, client: client}, nil
}

// Fetch pages through the endpoint until it returns an empty page and
// collects every converted triple into a store. Rows that cannot be
// converted are skipped and counted.
func (f *Fetcher) Fetch(ctx context.Context) (*Result, error) {
	b := rdf.NewBuilder()
	res := &Result{}

	for offset := 0; ; offset += f.opts.BatchSize {
		rows, err := f.page(ctx, offset)
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			break
		}
		res.Pages++

		for _, row := range rows {
			res.Rows++
			triples, err := f.convert(row)
			if err != nil {
				res.Skipped++
				metrics.FetchRowsTotal.WithLabelValues("skipped").Inc()
				slog.Warn("skipping sparql row", "offset", offset, "error", err)
				continue
			}
			metrics.FetchRowsTotal.WithLabelValues("ok").Inc()
			for _, t := range triples {
				b.Add(t)
			}
		}

		slog.Info("sparql page fetched", "offset", offset, "rows", len(rows), "triples", b.Len())
	}

	res.Store = b.Build()
	return res, nil
}

type binding struct {
	Type     string `json:"type"`
	Value    string `json:"value"`
	Lang     string `json:"xml:lang"`
	Datatype string `json:"datatype"`
}

type resultsDoc struct {
	Results struct {
		Bindings []map[string]binding `json:"bindings"`
	} `json:"results"`
}

func (f *Fetcher) page(ctx context.Context, offset int) ([]map[string]binding, error) {
	query := buildQuery(f.opts.Query, f.opts.Graphs, f.opts.BatchSize, offset)
	form := url.Values{"query": {query}}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.opts.Endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, rdlerr.Wrap(err, rdlerr.CodeSourceRequestInvalid, "building sparql request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", resultsMediaType)
	if f.opts.Username != "" {
		req.SetBasicAuth(f.opts.Username, f.opts.Password)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, rdlerr.Wrap(err, rdlerr.CodeSourceUpstreamFailure, "querying sparql endpoint",
			rdlerr.Field("offset", offset))
	}
	defer resp.Body.Close() //nolint:errcheck // error on read-path close is not actionable

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, rdlerr.New(rdlerr.CodeSourceUpstreamFailure,
			fmt.Sprintf("sparql endpoint returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
			rdlerr.Field("offset", offset))
	}

	var doc resultsDoc
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, rdlerr.Wrap(err, rdlerr.CodeSourceResponseInvalid, "decoding sparql results",
			rdlerr.Field("offset", offset))
	}
	return doc.Results.Bindings, nil
}
