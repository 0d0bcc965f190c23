package storage

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

type hostRoute struct {
	suffix  string
	fetcher ImageFetcher
}

// Router dispatches a location to the fetcher registered for its host or
// scheme. Host routes are checked first. Locations without a scheme are
// treated as file paths.
type Router struct {
	schemes map[string]ImageFetcher
	hosts   []hostRoute
}

// NewRouter creates an empty router
func NewRouter() *Router {
	return &Router{schemes: make(map[string]ImageFetcher)}
}

// Handle registers fetcher for a URL scheme
func (r *Router) Handle(scheme string, fetcher ImageFetcher) *Router {
	r.schemes[strings.ToLower(scheme)] = fetcher
	return r
}

// HandleHostSuffix registers fetcher for hosts ending in suffix
func (r *Router) HandleHostSuffix(suffix string, fetcher ImageFetcher) *Router {
	r.hosts = append(r.hosts, hostRoute{suffix: strings.ToLower(suffix), fetcher: fetcher})
	return r
}

// Schemes lists the registered schemes in sorted order
func (r *Router) Schemes() []string {
	schemes := make([]string, 0, len(r.schemes))
	for scheme := range r.schemes {
		schemes = append(schemes, scheme)
	}
	sort.Strings(schemes)
	return schemes
}

// FetchImage implements ImageFetcher
func (r *Router) FetchImage(ctx context.Context, location string) ([]byte, error) {
	fetcher, err := r.route(location)
	if err != nil {
		return nil, err
	}
	return fetcher.FetchImage(ctx, location)
}

func (r *Router) route(location string) (ImageFetcher, error) {
	parsed, err := url.Parse(location)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedSource, err)
	}

	host := strings.ToLower(parsed.Hostname())
	for _, route := range r.hosts {
		if host != "" && strings.HasSuffix(host, route.suffix) {
			return route.fetcher, nil
		}
	}

	scheme := strings.ToLower(parsed.Scheme)
	if scheme == "" {
		scheme = "file"
	}
	if fetcher, ok := r.schemes[scheme]; ok {
		return fetcher, nil
	}
	return nil, fmt.Errorf("%w: scheme %q", ErrUnsupportedSource, scheme)
}
