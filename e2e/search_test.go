//go:build e2e && unix

package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSearchRestartsList(t *testing.T) {
	t.Parallel()
	tf := startBrowser(t, 10, 120)
	defer tf.Cleanup()

	require.True(t, tf.OutputContainsPlain("of 120 loaded", 5*time.Second), "Should report the total")

	require.NoError(t, tf.Search("FOCUS"))
	require.True(t, tf.OutputContainsPlain(`search: "FOCUS"`, 2*time.Second), "Should show the active search")

	// the filtered total is smaller than the full dataset
	require.NoError(t, tf.WaitForE(func(s string) bool {
		plain := ansiRe.ReplaceAllString(s, "")
		return containsAfter(plain, `search: "FOCUS"`, "loaded") && !containsAfter(plain, `search: "FOCUS"`, "of 120 loaded")
	}, 5*time.Second, "Search should load a filtered result set"))

	require.NoError(t, tf.SendKeys(KeyEsc))
	require.NoError(t, tf.WaitForE(func(s string) bool {
		plain := ansiRe.ReplaceAllString(s, "")
		return containsAfter(plain, "sort: name asc", "of 120 loaded")
	}, 5*time.Second, "Clearing the search should reload the full set"))
}

func TestSearchWithoutMatches(t *testing.T) {
	t.Parallel()
	tf := startBrowser(t, 10, 40)
	defer tf.Cleanup()

	require.True(t, tf.OutputContainsPlain("of 40 loaded", 5*time.Second), "Should report the total")

	require.NoError(t, tf.Search("zzz-nothing"))
	require.True(t, tf.OutputContainsPlain("no results", 5*time.Second), "Should show the empty state")
}
