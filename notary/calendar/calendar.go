// Copyright 2023 The Stamp Contributors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package calendar obtains notary signatures for digests from remote servers. It
// is a collaborator of the proof engine, not part of it: the engine only checks
// that whatever signatures were collected are anchored to the document.
package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jellydator/ttlcache/v3"

	"github.com/in-toto/go-stamp/cryptoutil"
	"github.com/in-toto/go-stamp/log"
	"github.com/in-toto/go-stamp/notary"
)

// Client talks to a calendar server: submit a digest, receive the signatures the
// server has collected for it. Responses are cached per digest so polling loops
// do not hammer the server.
type Client struct {
	url      string
	hc       *http.Client
	cacheTTL time.Duration
	cache    *ttlcache.Cache[string, []notary.Signature]
}

type Option func(*Client)

// WithHTTPClient overrides the http.Client used for requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.hc = hc
	}
}

// WithCacheTTL sets how long a digest's signatures are served from cache.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Client) {
		c.cacheTTL = ttl
	}
}

// New creates a calendar client for the server at url.
func New(url string, opts ...Option) *Client {
	c := &Client{
		url:      strings.TrimSuffix(url, "/"),
		hc:       http.DefaultClient,
		cacheTTL: time.Hour,
	}

	for _, opt := range opts {
		opt(c)
	}

	c.cache = ttlcache.New[string, []notary.Signature](
		ttlcache.WithTTL[string, []notary.Signature](c.cacheTTL),
	)

	return c
}

// Signatures submits a digest to the calendar and decodes the signatures the
// server returns for it. The attested digest may be referenced by stack position
// 0 in the response, the submitted digest being the only digest in context.
func (c *Client) Signatures(ctx context.Context, digest cryptoutil.Digest) ([]notary.Signature, error) {
	if item := c.cache.Get(digest.Hex()); item != nil {
		log.Debugf("calendar %v: cache hit for %v", c.url, digest.Hex())
		return item.Value(), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+"/digest", strings.NewReader(digest.Hex()))
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar request: %w", err)
	}

	req.Header.Set("Content-Type", "text/plain")
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calendar request failed: %w", err)
	}

	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read calendar response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("calendar returned status %v", resp.StatusCode)
	}

	var prims []notary.Primitive
	if err := json.Unmarshal(body, &prims); err != nil {
		return nil, fmt.Errorf("failed to decode calendar response: %w", err)
	}

	stack := cryptoutil.NewDigestStack()
	stack.Push(digest)
	sigs := make([]notary.Signature, 0, len(prims))
	for _, prim := range prims {
		sig, err := notary.FromPrimitive(prim, stack)
		if err != nil {
			return nil, err
		}

		sigs = append(sigs, sig)
	}

	log.Debugf("calendar %v: %v signatures for %v", c.url, len(sigs), digest.Hex())
	c.cache.Set(digest.Hex(), sigs, ttlcache.DefaultTTL)
	return sigs, nil
}
