package main

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"9fans.net/go/acme"
	"github.com/nicolagi/todoes"
	log "github.com/sirupsen/logrus"
)

type windowMode int

const (
	modeItem    windowMode = iota // /todo/items/$id
	modeNewItem                   // /todo/items/new
	modeAll                       // /todo/all
	modeSearch                    // /todo/search/$term
)

func (mode windowMode) String() string {
	switch mode {
	case modeItem:
		return "item"
	case modeNewItem:
		return "newItem"
	case modeAll:
		return "all"
	case modeSearch:
		return "search"
	default:
		log.WithField("mode", int(mode)).Error("Missing mode string, returning as number")
		return fmt.Sprintf("%d", int(mode))
	}
}

var all struct {
	sync.Mutex
	m map[*acme.Win]*window
}

type window struct {
	*acme.Win

	mode windowMode

	itemID int64  // For modeItem
	term   string // For modeSearch

	// The todo as last loaded, for modeItem. Put sends back its extra properties.
	todo *todoes.Todo

	// If false, sort by id. Only used for all and search modes.
	sortAlphabetically bool
}

// resetTag is used when a new window is created, or when transitioning a window from new item mode to item mode.
func (w *window) resetTag() {
	var tag string
	switch w.mode {
	case modeItem:
		tag = " All New Get Put PutDel Zap "
	case modeNewItem:
		tag = " All Put PutDel "
	case modeAll:
		tag = " New Get Sort Search "
	case modeSearch:
		tag = " All New Get Sort Search "
	}
	_ = w.Ctl("cleartag")
	_ = w.Fprintf("tag", tag)
}

// exit is called after the window's event loop is over, i.e., the window has been closed in acme.
func (w *window) exit() {
	all.Lock()
	defer all.Unlock()
	if all.m[w.Win] == w {
		delete(all.m, w.Win)
	}
	if len(all.m) == 0 {
		os.Exit(0)
	}
}

// newWindow creates a window in acme without a specific purpose, and registers it in the global map of windows.
func newWindow(pathname string) *window {
	all.Lock()
	defer all.Unlock()
	if all.m == nil {
		all.m = make(map[*acme.Win]*window)
	}

	logEntry := log.WithField("path", pathname)
	aw, err := acme.New()
	if err != nil {
		logEntry.WithField("cause", err).Warning("Could not create acme window")
		time.Sleep(10 * time.Millisecond)
		aw, err = acme.New()
		if err != nil {
			logEntry.WithField("cause", err).Fatal("Could not create acme window again")
		}
	}
	aw.SetErrorPrefix(pathname)
	_ = aw.Name(pathname)

	w := &window{Win: aw}
	all.m[w.Win] = w
	return w
}

func newAllWindow() {
	title := "/todo/all"
	if acme.Show(title) != nil {
		return
	}
	w := newWindow(title)
	w.mode = modeAll
	w.resetTag()
	go w.load()
	go w.loop()
}

func newSearchWindow(term string) {
	title := "/todo/search/" + term
	if acme.Show(title) != nil {
		return
	}
	w := newWindow(title)
	w.mode = modeSearch
	w.term = term
	w.resetTag()
	go w.load()
	go w.loop()
}

func newItemWindow(id int64) {
	var title string
	if id != 0 {
		title = fmt.Sprintf("/todo/items/%d", id)
	} else {
		title = "/todo/items/new"
	}
	if acme.Show(title) != nil {
		return
	}
	w := newWindow(title)
	if id != 0 {
		w.mode = modeItem
		w.itemID = id
	} else {
		w.mode = modeNewItem
	}
	w.resetTag()
	go w.load()
	go w.loop()
}

// Look is invoked via button-3 click in acme. If the text is the id of an existing todo, open it. Otherwise
// return false to defer to other handlers (to, e.g., open a file).
func (w *window) Look(text string) bool {
	id, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
	if err != nil || id <= 0 {
		return false
	}
	if client.TodoNo404(ctx, id) == nil {
		return false
	}
	newItemWindow(id)
	return true
}

func (w *window) load() {
	var buf bytes.Buffer
	var err error
	switch w.mode {
	case modeNewItem:
		printNewItem(&buf)
	case modeItem:
		var todo *todoes.Todo
		if todo, err = printItemByID(&buf, w.itemID); err == nil {
			w.todo = todo
		}
	case modeAll:
		err = printAll(&buf)
	case modeSearch:
		err = printSearch(&buf, w.term)
	}
	w.Clear()
	if err != nil {
		_, _ = w.Write("body", []byte(err.Error()))
	} else if w.mode == modeItem || w.mode == modeNewItem {
		_, _ = w.Write("body", buf.Bytes())
		_ = w.Ctl("clean")
	} else {
		w.PrintTabbed(buf.String())
		_ = w.Ctl("clean")
		if w.sortAlphabetically {
			w.sort()
		}
	}

	if err == nil && (w.mode == modeItem || w.mode == modeNewItem) {
		_ = w.Addr("#6") // Past "Name: "
	} else {
		_ = w.Addr("0")
	}
	_ = w.Ctl("dot=addr")
	_ = w.Ctl("show")
}

func (w *window) sort() {
	if err := w.Addr("0/^[0-9]/,"); err != nil {
		w.Err("nothing to sort")
		return
	}
	var less func(string, string) bool
	if !w.sortAlphabetically {
		less = func(a, b string) bool { return lineNumber(a) < lineNumber(b) }
	} else {
		less = func(a, b string) bool { return skipField(a) < skipField(b) }
	}
	if err := w.Sort(less); err != nil {
		w.Errf("Could not sort: %v", err.Error())
	}
	_ = w.Addr("0")
	_ = w.Ctl("dot=addr")
	_ = w.Ctl("show")
}

func lineNumber(s string) int {
	n := 0
	for j := 0; j < len(s) && '0' <= s[j] && s[j] <= '9'; j++ {
		n = n*10 + int(s[j]-'0')
	}
	return n
}

func skipField(s string) string {
	i := strings.Index(s, "\t")
	if i < 0 {
		return s
	}
	for i < len(s) && s[i] == '\t' {
		i++
	}
	return s[i:]
}

// Execute is triggered by button-2 click in acme.
func (w *window) Execute(cmd string) bool {
	if strings.HasPrefix(cmd, "Search ") {
		term := strings.TrimSpace(strings.TrimPrefix(cmd, "Search "))
		newSearchWindow(term)
		return true
	}
	if cmd == "Zap" && w.mode == modeItem {
		cmd += fmt.Sprintf(" %d", w.itemID)
	}
	if strings.HasPrefix(cmd, "Zap ") {
		id, err := strconv.ParseInt(strings.TrimSpace(strings.TrimPrefix(cmd, "Zap ")), 10, 64)
		if err != nil {
			return false
		}
		// The response doesn't tell us whether the delete went through; windows are reloaded either way.
		client.DeleteTodo(ctx, id)
		onItemZapped(id)
		return true
	}
	switch cmd {
	case "All":
		newAllWindow()
		return true
	case "Get":
		w.load()
		return true
	case "Put", "PutDel":
		del := cmd == "PutDel"
		body, err := w.ReadAll("body")
		if err != nil {
			w.Errf("Could not read window body: %v", err)
			return true
		}
		name, err := parseItem(string(body))
		if err != nil {
			w.Errf("Failed parsing edited window: %v", err)
			return true
		}
		switch w.mode {
		case modeNewItem:
			created := client.AddTodo(ctx, &todoes.Todo{Name: name})
			if created == nil {
				w.Errf("Could not add todo, see log")
				return true
			}
			_ = w.Name("/todo/items/%d", created.ID)
			w.mode = modeItem
			w.itemID = created.ID
			w.todo = created
			w.resetTag()
			_ = w.Ctl("clean")
			if del {
				_ = w.Del(true)
			}
			onItemPut(created.ID)
		case modeItem:
			todo := &todoes.Todo{ID: w.itemID, Name: name}
			if w.todo != nil {
				todo.Extra = w.todo.Extra
			}
			client.UpdateTodo(ctx, todo)
			if del {
				_ = w.Del(true)
			}
			onItemPut(w.itemID)
		default:
			w.Errf("Put forbidden for this window mode: %v", w.mode)
		}
		return true
	case "Del":
		_ = w.Del(false)
		return true
	case "New":
		newItemWindow(0)
		return true
	case "Sort":
		if w.mode == modeAll || w.mode == modeSearch {
			w.sortAlphabetically = !w.sortAlphabetically
			w.sort()
		} else {
			w.Errf("Window mode does not allow sorting: %v", w.mode)
		}
		return true
	default:
		return false
	}
}

func (w *window) loop() {
	defer w.exit()
	w.EventLoop(w)
}

func onItemPut(id int64) {
	all.Lock()
	defer all.Unlock()
	for _, w := range all.m {
		switch w.mode {
		case modeAll, modeSearch:
			w.load()
		case modeItem:
			if w.itemID == id {
				_ = w.Ctl("clean")
				w.load()
			}
		}
	}
}

func onItemZapped(id int64) {
	all.Lock()
	defer all.Unlock()
	for _, w := range all.m {
		if w.mode == modeAll || w.mode == modeSearch {
			w.load()
		}
		if w.mode == modeItem && w.itemID == id {
			_ = w.Del(true)
		}
	}
}
