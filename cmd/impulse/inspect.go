package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	impulseApp "github.com/shhac/impulse/internal/app"
	"github.com/shhac/impulse/internal/backend"
	"github.com/shhac/impulse/internal/domain"
	"github.com/shhac/impulse/internal/logging"
	"github.com/shhac/impulse/internal/storage"
	"github.com/shhac/impulse/internal/workspace"
)

func newListCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "ls",
		Short: "Print the request collection as a tree",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.config(cmd)
			if err != nil {
				return err
			}
			logger := logging.NewConsoleLogger(os.Stderr, cfg.Debug)
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			gateway, conns := impulseApp.NewGateway(cfg, logger)
			defer gateway.Transport().Close()
			if conns != nil {
				if err := conns.Connect(ctx, cfg.BackendAddress, backend.DialOptions{}); err != nil {
					return err
				}
			}

			listing, err := gateway.List(ctx).Unpack()
			if err != nil {
				pterm.Error.Println("Could not list the collection")
				return err
			}
			root := pterm.TreeNode{
				Text:     pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint(f.endpoint(cfg)),
				Children: treeNodes(listing.Tree, listing.Previews),
			}
			if err := pterm.DefaultTree.WithRoot(root).Render(); err != nil {
				return err
			}
			pterm.Println(fmt.Sprintf("%d requests, %d history entries", len(listing.Previews), len(listing.History)))
			return nil
		},
	}
}

func (f *flags) endpoint(cfg *impulseApp.Config) string {
	if cfg.Transport == impulseApp.TransportGRPC {
		return cfg.BackendAddress
	}
	return cfg.BackendURL
}

// treeNodes renders one tree level: directories first, then requests with
// their badge.
func treeNodes(tree domain.Tree, previews map[string]domain.Preview) []pterm.TreeNode {
	var nodes []pterm.TreeNode
	for _, name := range tree.DirNames() {
		nodes = append(nodes, pterm.TreeNode{
			Text:     name + domain.PathSeparator,
			Children: treeNodes(tree.Dirs[name], previews),
		})
	}
	for _, id := range tree.IDs {
		badge := ""
		if p, ok := previews[id]; ok {
			badge = " [" + p.Badge() + "]"
		}
		nodes = append(nodes, pterm.TreeNode{Text: domain.Basename(id) + badge})
	}
	return nodes
}

func newTabsCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "tabs",
		Short: "Print the persisted open tabs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.config(cmd)
			if err != nil {
				return err
			}
			logger := logging.NewConsoleLogger(os.Stderr, cfg.Debug)

			kv, err := storage.Open(cfg.StorageDriver, cfg.StoragePath, logger)
			if err != nil {
				return err
			}
			defer kv.Close()

			ws := workspace.NewController(kv, logger)
			ws.Restore(func(string) bool { return true }, "")
			snap := ws.Snapshot()
			if len(snap.Tabs) == 0 {
				pterm.Info.Println("No open tabs")
				return nil
			}
			return pterm.DefaultTable.WithHasHeader().WithData(tabRows(snap)).Render()
		},
	}
}

func tabRows(ws domain.Workspace) pterm.TableData {
	rows := pterm.TableData{{"#", "Request", "Active"}}
	for i, id := range ws.Tabs {
		active := ""
		if i == ws.Active {
			active = "●"
		}
		rows = append(rows, []string{strconv.Itoa(i + 1), id, active})
	}
	return rows
}
