package taxon_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/gnames/gnoccur/pkg/taxon"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheSetGet(t *testing.T) {
	c := taxon.NewCache()

	_, ok := c.Get("animalia;chordata")
	assert.False(t, ok)

	res := taxon.MatchResult{
		Key:            "animalia;chordata",
		ScientificName: "Chordata",
		Match:          taxon.Exact,
		Source:         taxon.SourceWoRMS,
	}
	c.Set(res)

	got, ok := c.Get("animalia;chordata")
	require.True(t, ok)
	assert.Equal(t, res, got)
	assert.Equal(t, 1, c.Len())
}

func TestCacheFirstWriterWins(t *testing.T) {
	c := taxon.NewCache()
	c.Set(taxon.MatchResult{Key: "k", ScientificName: "first"})
	c.Set(taxon.MatchResult{Key: "k", ScientificName: "second"})

	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "first", got.ScientificName)
	assert.Equal(t, 1, c.Len())
}

func TestCacheClaim(t *testing.T) {
	c := taxon.NewCache()
	assert.True(t, c.Claim("k"))
	assert.False(t, c.Claim("k"))
	assert.True(t, c.Claim("other"))
}

func TestCacheConcurrentWrites(t *testing.T) {
	c := taxon.NewCache()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := fmt.Sprintf("key-%d", n%10)
			c.Claim(key)
			c.Set(taxon.MatchResult{Key: key, ScientificName: "name"})
			c.Get(key)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 10, c.Len())
	assert.Len(t, c.All(), 10)
}

func TestUnresolved(t *testing.T) {
	res := taxon.Unresolved("some;key", taxon.SourceWoRMS, "ranks exhausted")

	assert.Equal(t, taxon.UnresolvedName, res.ScientificName)
	assert.Equal(t, taxon.UnresolvedID, res.ScientificNameID)
	assert.Equal(t, taxon.NoMatch, res.Match)
	assert.Equal(t, "ranks exhausted", res.FailureCause)
	assert.False(t, res.Resolved())
	assert.NotEmpty(t, res.KeyID)

	// key fingerprint is deterministic
	again := taxon.Unresolved("some;key", taxon.SourceWoRMS, "other cause")
	assert.Equal(t, res.KeyID, again.KeyID)
}
