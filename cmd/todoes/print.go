package main

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/nicolagi/todoes"
)

// The client can't tell a missing todo from a failed request, so neither can we.
var errNotFound = errors.New("todo not found or request failed, see log")

func printAll(w io.Writer) error {
	all := client.Todoes(ctx)
	sort.Sort(todoesByID(all))
	return printTodoes(w, all)
}

func printSearch(w io.Writer, term string) error {
	return printTodoes(w, client.SearchTodoes(ctx, term))
}

func printTodoes(w io.Writer, all []*todoes.Todo) error {
	for _, t := range all {
		_, _ = fmt.Fprintf(w, "%v\t%v\n", t.ID, t.Name)
	}
	return nil
}

// printItemByID fetches and prints the todo, returning it for later use by Put.
func printItemByID(w io.Writer, id int64) (*todoes.Todo, error) {
	todo := client.Todo(ctx, id)
	if todo == nil {
		return nil, fmt.Errorf("print todo: %d: %w", id, errNotFound)
	}
	printItem(w, todo)
	return todo, nil
}

func printItem(w io.Writer, todo *todoes.Todo) {
	_, _ = fmt.Fprintf(w, "Name: %s\n", todo.Name)
	keys := make([]string, 0, len(todo.Extra))
	for k := range todo.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		_, _ = fmt.Fprintf(w, "%s: %s\n", k, todo.Extra[k])
	}
}

func printNewItem(w io.Writer) {
	_, _ = fmt.Fprint(w, "Name: \n")
}

// parseItem reads the name from a todo window body. Only the name is editable, other lines are ignored.
func parseItem(body string) (name string, err error) {
	for _, line := range strings.Split(body, "\n") {
		if strings.HasPrefix(line, "Name:") {
			name = strings.TrimSpace(line[len("Name:"):])
			// Hard to imagine one intends to make the name empty.
			if name == "" {
				return "", errors.New("empty name")
			}
			return name, nil
		}
	}
	return "", errors.New(`no "Name:" line`)
}
