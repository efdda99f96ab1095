package metadata

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/data/binding"
	"fyne.io/fyne/v2/widget"

	"github.com/shhac/impulse/internal/domain"
)

// KVEditor edits an ordered list of key/value pairs such as HTTP headers or
// gRPC metadata. Duplicate keys are kept; order is preserved.
type KVEditor struct {
	widget.BaseWidget

	keys     binding.StringList
	vals     binding.StringList
	list     *widget.List
	keyEntry *widget.Entry
	valEntry *widget.Entry
	addBtn   *widget.Button
	clearBtn *widget.Button

	onChanged func()
}

// NewKVEditor creates an empty editor. keyHint labels the key entry, e.g.
// "Header name".
func NewKVEditor(keyHint, valueHint string) *KVEditor {
	e := &KVEditor{
		keys: binding.NewStringList(),
		vals: binding.NewStringList(),
	}

	e.list = widget.NewList(
		func() int {
			return e.keys.Length()
		},
		func() fyne.CanvasObject {
			// Template row: key label, equals, value label, delete button
			return container.NewHBox(
				widget.NewLabel(""),
				widget.NewLabel(" = "),
				widget.NewLabel(""),
				widget.NewButton("X", nil),
			)
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			hbox := obj.(*fyne.Container)
			key, _ := e.keys.GetValue(id)
			val, _ := e.vals.GetValue(id)
			hbox.Objects[0].(*widget.Label).SetText(key)
			hbox.Objects[2].(*widget.Label).SetText(val)
			hbox.Objects[3].(*widget.Button).OnTapped = func() {
				e.remove(id)
			}
		},
	)

	e.keyEntry = widget.NewEntry()
	e.keyEntry.SetPlaceHolder(keyHint)
	e.valEntry = widget.NewEntry()
	e.valEntry.SetPlaceHolder(valueHint)
	e.valEntry.OnSubmitted = func(string) { e.add() }

	e.addBtn = widget.NewButton("+ Add", e.add)
	e.clearBtn = widget.NewButton("Clear All", func() {
		e.Set(nil)
		e.changed()
	})

	e.ExtendBaseWidget(e)
	return e
}

// SetOnChanged sets the callback fired after the user edits the list.
// Set does not fire it.
func (e *KVEditor) SetOnChanged(fn func()) {
	e.onChanged = fn
}

// Set replaces the list contents.
func (e *KVEditor) Set(kvs []domain.KV) {
	keys := make([]string, len(kvs))
	vals := make([]string, len(kvs))
	for i, kv := range kvs {
		keys[i] = kv.Key
		vals[i] = kv.Value
	}
	_ = e.keys.Set(keys)
	_ = e.vals.Set(vals)
	e.list.Refresh()
}

// Values returns the pairs in display order. It never returns nil.
func (e *KVEditor) Values() []domain.KV {
	n := e.keys.Length()
	out := make([]domain.KV, 0, n)
	for i := range n {
		key, _ := e.keys.GetValue(i)
		val, _ := e.vals.GetValue(i)
		out = append(out, domain.KV{Key: key, Value: val})
	}
	return out
}

func (e *KVEditor) add() {
	key := e.keyEntry.Text
	if key == "" {
		return
	}
	_ = e.keys.Append(key)
	_ = e.vals.Append(e.valEntry.Text)

	e.keyEntry.SetText("")
	e.valEntry.SetText("")
	e.list.Refresh()
	e.changed()
}

func (e *KVEditor) remove(index int) {
	keys, _ := e.keys.Get()
	vals, _ := e.vals.Get()
	if index < 0 || index >= len(keys) {
		return
	}
	_ = e.keys.Set(append(keys[:index:index], keys[index+1:]...))
	_ = e.vals.Set(append(vals[:index:index], vals[index+1:]...))
	e.list.Refresh()
	e.changed()
}

func (e *KVEditor) changed() {
	if e.onChanged != nil {
		e.onChanged()
	}
}

// CreateRenderer implements fyne.Widget.
func (e *KVEditor) CreateRenderer() fyne.WidgetRenderer {
	entry := container.NewBorder(
		nil, nil, nil,
		container.NewHBox(e.addBtn, e.clearBtn),
		container.NewGridWithColumns(2, e.keyEntry, e.valEntry),
	)
	return widget.NewSimpleRenderer(container.NewBorder(nil, entry, nil, nil, e.list))
}

// KVView shows key/value pairs read-only, e.g. response headers.
type KVView struct {
	widget.BaseWidget

	pairs []domain.KV
	list  *widget.List
	empty *widget.Label
}

// NewKVView creates an empty view. emptyText is shown when there is nothing
// to display.
func NewKVView(emptyText string) *KVView {
	v := &KVView{empty: widget.NewLabel(emptyText)}
	v.empty.Importance = widget.LowImportance

	v.list = widget.NewList(
		func() int {
			return len(v.pairs)
		},
		func() fyne.CanvasObject {
			key := widget.NewLabel("")
			key.TextStyle = fyne.TextStyle{Bold: true}
			return container.NewHBox(key, widget.NewLabel(""))
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			hbox := obj.(*fyne.Container)
			hbox.Objects[0].(*widget.Label).SetText(v.pairs[id].Key + ":")
			hbox.Objects[1].(*widget.Label).SetText(v.pairs[id].Value)
		},
	)

	v.ExtendBaseWidget(v)
	return v
}

// Set replaces the displayed pairs.
func (v *KVView) Set(kvs []domain.KV) {
	v.pairs = append([]domain.KV(nil), kvs...)
	if len(v.pairs) == 0 {
		v.empty.Show()
	} else {
		v.empty.Hide()
	}
	v.list.Refresh()
}

// Len returns the number of displayed pairs.
func (v *KVView) Len() int {
	return len(v.pairs)
}

// CreateRenderer implements fyne.Widget.
func (v *KVView) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(container.NewStack(v.list, container.NewCenter(v.empty)))
}
