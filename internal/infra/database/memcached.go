package database

import (
	"strings"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/pkg/errors"
)

// NewMemcached connects the ranking cache. servers is a comma separated list.
func NewMemcached(servers string) (*memcache.Client, error) {
	var list []string
	for _, s := range strings.Split(servers, ",") {
		if s = strings.TrimSpace(s); s != "" {
			list = append(list, s)
		}
	}
	if len(list) == 0 {
		return nil, errors.New("no memcached server given")
	}

	client := memcache.New(list...)
	client.Timeout = 500 * time.Millisecond
	client.MaxIdleConns = 8
	if err := client.Ping(); err != nil {
		return nil, errors.Wrapf(err, "memcached %s", servers)
	}
	return client, nil
}
