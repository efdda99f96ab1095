package browser

import (
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/data/binding"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/shhac/impulse/internal/domain"
)

// RequestBrowser displays the request collection as a directory tree.
// Directory uids end in "/" so they never collide with request ids.
type RequestBrowser struct {
	widget.BaseWidget

	tree       *widget.Tree
	themedTree fyne.CanvasObject
	collection binding.Item[domain.Tree]
	previews   binding.Item[map[string]domain.Preview]

	selected string

	// Callbacks
	onSelect func(id string)
}

// NewRequestBrowser creates a new request browser widget bound to the
// collection tree and previews.
func NewRequestBrowser(collection binding.Item[domain.Tree], previews binding.Item[map[string]domain.Preview]) *RequestBrowser {
	b := &RequestBrowser{
		collection: collection,
		previews:   previews,
	}

	b.tree = widget.NewTree(
		b.childUIDs,
		b.isBranch,
		b.create,
		b.update,
	)
	b.tree.OnSelected = b.onTreeSelected

	b.themedTree = container.NewThemeOverride(b.tree, newTreeTheme(theme.DefaultTheme()))

	refresh := binding.NewDataListener(func() { b.tree.Refresh() })
	collection.AddListener(refresh)
	previews.AddListener(refresh)

	b.ExtendBaseWidget(b)
	return b
}

// SetOnSelect sets the callback for when a request is chosen.
func (b *RequestBrowser) SetOnSelect(fn func(id string)) {
	b.onSelect = fn
}

// Selected returns the id of the last chosen request, "" if none.
func (b *RequestBrowser) Selected() string {
	return b.selected
}

// SelectedDir returns the directory new requests should be created in: the
// directory of the selected request, or the root.
func (b *RequestBrowser) SelectedDir() string {
	return domain.Dirname(b.selected)
}

// Reveal opens every directory above id and highlights it without firing
// the select callback.
func (b *RequestBrowser) Reveal(id string) {
	b.selected = id
	if id == "" {
		b.tree.UnselectAll()
		return
	}
	dir := domain.Dirname(id)
	for dir != "" {
		b.tree.OpenBranch(dir + domain.PathSeparator)
		dir = domain.Dirname(dir)
	}
	b.tree.OnSelected = nil
	b.tree.Select(id)
	b.tree.OnSelected = b.onTreeSelected
}

// Refresh redraws the tree from the bindings.
func (b *RequestBrowser) Refresh() {
	b.tree.Refresh()
}

// CreateRenderer creates the renderer for this widget
func (b *RequestBrowser) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(b.themedTree)
}

func (b *RequestBrowser) current() domain.Tree {
	tree, _ := b.collection.Get()
	return tree
}

func (b *RequestBrowser) preview(id string) (domain.Preview, bool) {
	previews, _ := b.previews.Get()
	p, ok := previews[id]
	return p, ok
}

// childUIDs lists sub-directories first, then requests.
func (b *RequestBrowser) childUIDs(uid string) []string {
	if uid != "" && !isDirUID(uid) {
		return []string{}
	}
	dir := strings.TrimSuffix(uid, domain.PathSeparator)
	node, ok := b.current().Subtree(dir)
	if !ok {
		return []string{}
	}

	uids := make([]string, 0, len(node.Dirs)+len(node.IDs))
	for _, name := range node.DirNames() {
		uids = append(uids, domain.JoinPath(dir, name)+domain.PathSeparator)
	}
	return append(uids, node.IDs...)
}

func (b *RequestBrowser) isBranch(uid string) bool {
	return uid == "" || isDirUID(uid)
}

func isDirUID(uid string) bool {
	return strings.HasSuffix(uid, domain.PathSeparator)
}

// create uses the same structure for branches and leaves.
func (b *RequestBrowser) create(branch bool) fyne.CanvasObject {
	icon := canvas.NewImageFromResource(theme.FolderIcon())
	icon.FillMode = canvas.ImageFillContain
	icon.SetMinSize(fyne.NewSize(16, 16))

	label := widget.NewLabel("")
	badge := widget.NewLabel("")
	badge.Importance = widget.LowImportance

	return container.NewHBox(icon, label, badge)
}

func (b *RequestBrowser) update(uid string, branch bool, obj fyne.CanvasObject) {
	cont := obj.(*fyne.Container)
	icon := cont.Objects[0].(*canvas.Image)
	label := cont.Objects[1].(*widget.Label)
	badge := cont.Objects[2].(*widget.Label)

	if branch {
		icon.Resource = theme.FolderIcon()
		icon.Refresh()
		label.TextStyle = fyne.TextStyle{Bold: true}
		label.SetText(domain.Basename(strings.TrimSuffix(uid, domain.PathSeparator)))
		badge.SetText("")
		return
	}

	p, ok := b.preview(uid)
	icon.Resource = kindIcon(p.Kind)
	icon.Refresh()
	label.TextStyle = fyne.TextStyle{}
	label.SetText(domain.Basename(uid))
	if ok {
		badge.SetText(p.Badge())
	} else {
		badge.SetText("")
	}
}

// onTreeSelected opens requests and toggles directories.
func (b *RequestBrowser) onTreeSelected(uid string) {
	if isDirUID(uid) {
		if b.tree.IsBranchOpen(uid) {
			b.tree.CloseBranch(uid)
		} else {
			b.tree.OpenBranch(uid)
		}
		// Unselect so clicking the same directory again toggles it
		b.tree.UnselectAll()
		return
	}

	b.selected = uid
	if b.onSelect != nil {
		b.onSelect(uid)
	}
}
