//go:build e2e && unix

package main

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func startBrowser(t *testing.T, pageSize, items int) *TUITestFramework {
	t.Helper()
	tf := NewTUITest(t)

	_, err := tf.CreateTestWorkspaceWith(pageSize, items)
	require.NoError(t, err, "Failed to create test workspace")

	err = tf.StartApp("browse")
	require.NoError(t, err, "Failed to start app")

	require.True(t, tf.Ready(), "Should receive ready signal")
	require.True(t, tf.SeePlain("scrollgrid"), "Should show scrollgrid title")
	return tf
}

func TestBrowseShowsFirstRows(t *testing.T) {
	t.Parallel()
	tf := startBrowser(t, 10, 120)
	defer tf.Cleanup()

	// 40 terminal rows leave room for more than one page
	require.NoError(t, tf.WaitForE(func(s string) bool {
		return strings.Contains(ansiRe.ReplaceAllString(s, ""), "of 120 loaded")
	}, 5*time.Second, "Should report the total"))

	require.True(t, tf.OutputContainsPlain("Man-LT-", 3*time.Second) || tf.OutputContainsPlain("FOCUS-SVR-", time.Second),
		"Should render generated server rows")
	require.True(t, tf.SeePlain("sort: name asc"), "Should show the initial sort")
}

func TestBrowseScrollToBottomLoadsEverything(t *testing.T) {
	t.Parallel()
	tf := startBrowser(t, 10, 60)
	defer tf.Cleanup()

	require.True(t, tf.OutputContainsPlain("of 60 loaded", 5*time.Second), "Should report the total")

	require.NoError(t, tf.SendKeys(KeyBottom))
	require.NoError(t, tf.WaitForE(func(s string) bool {
		return strings.Contains(ansiRe.ReplaceAllString(s, ""), "60 of 60 loaded")
	}, 10*time.Second, "Jumping to the bottom should load every page"))

	require.Contains(t, tf.LogContents(), "page merged", "Fetches should be logged to the workspace log file")
}

func TestBrowseNavigationChangesOutput(t *testing.T) {
	t.Parallel()
	tf := startBrowser(t, 10, 50)
	defer tf.Cleanup()

	require.True(t, tf.OutputContainsPlain("row 1", 5*time.Second), "Should show the cursor row")

	tf.Down()
	tf.Down()
	require.True(t, tf.OutputContainsPlain("row 3", 2*time.Second), "Cursor should move down")

	mark := tf.Mark()
	tf.SendKeys(KeyUp)
	require.True(t, tf.SeeAfter(mark, "row 2", 2*time.Second), "Cursor should move up")
}

func TestBrowseHelpToggle(t *testing.T) {
	t.Parallel()
	tf := startBrowser(t, 10, 30)
	defer tf.Cleanup()

	require.NoError(t, tf.SendKeys(KeyHelp))
	require.True(t, tf.OutputContainsPlain("clear search", 2*time.Second), "Full help should list all keys")
}
