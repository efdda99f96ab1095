package main

import (
	"testing"

	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shhac/impulse/internal/domain"
)

func TestTreeNodes(t *testing.T) {
	tree := domain.BuildTree([]string{"api/users", "api/v2/orders", "readme"})
	previews := map[string]domain.Preview{
		"api/users": {Kind: domain.KindHTTP, SubKind: "get"},
		"readme":    {Kind: domain.KindMarkdown},
	}

	nodes := treeNodes(tree, previews)
	require.Len(t, nodes, 2)
	assert.Equal(t, "api/", nodes[0].Text)
	assert.Equal(t, "readme [MD]", nodes[1].Text)

	api := nodes[0].Children
	require.Len(t, api, 2)
	assert.Equal(t, "v2/", api[0].Text)
	assert.Equal(t, "users [GET]", api[1].Text)
	assert.Equal(t, "orders", api[0].Children[0].Text)
}

func TestTabRows(t *testing.T) {
	rows := tabRows(domain.Workspace{Tabs: []string{"a", "b"}, Active: 1})
	assert.Equal(t, pterm.TableData{
		{"#", "Request", "Active"},
		{"1", "a", ""},
		{"2", "b", "●"},
	}, rows)
}

func TestFlagsOverrideConfig(t *testing.T) {
	dir := t.TempDir()
	root, f := newRootCmd()
	ls, _, err := root.Find([]string{"ls"})
	require.NoError(t, err)
	require.NoError(t, ls.ParseFlags([]string{"--storage", dir, "--transport", "grpc", "--backend", "localhost:9000"}))

	cfg, err := f.config(ls)
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.StoragePath)
	assert.Equal(t, "grpc", cfg.Transport)
	assert.Equal(t, "localhost:9000", cfg.BackendAddress)
}

func TestFlagsRejectBadTransport(t *testing.T) {
	root, f := newRootCmd()
	ls, _, err := root.Find([]string{"ls"})
	require.NoError(t, err)
	require.NoError(t, ls.ParseFlags([]string{"--storage", t.TempDir(), "--transport", "carrier-pigeon"}))

	_, err = f.config(ls)
	assert.Error(t, err)
}

func TestDeepLink(t *testing.T) {
	tests := map[string]string{
		"":                         "",
		"api/users":                "#api/users",
		"#api/users":               "#api/users",
		"impulse://open#api/users": "#api/users",
		"impulse://open#":          "",
	}
	for in, want := range tests {
		assert.Equal(t, want, deepLink(in), in)
	}
}
