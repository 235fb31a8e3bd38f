package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/nicolagi/todoes"
	"github.com/nicolagi/todoes/internal/memapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupClient(t *testing.T) {
	store := memapi.NewStore(
		&todoes.Todo{ID: 2, Name: "buy eggs", Extra: map[string]json.RawMessage{"done": json.RawMessage("true")}},
		&todoes.Todo{ID: 1, Name: "buy milk"},
		&todoes.Todo{ID: 3, Name: "call mom"},
	)
	srv := httptest.NewServer(memapi.NewRouter("/api", store))
	t.Cleanup(srv.Close)
	c, err := todoes.NewClient(
		todoes.WithBaseURL(srv.URL+"/api/"),
		todoes.WithErrorLogger(todoes.ErrorLoggerFunc(func(string, error) {})),
	)
	require.Nil(t, err)
	client = c
}

func TestPrintAllSortsByID(t *testing.T) {
	setupClient(t)
	var buf bytes.Buffer
	require.Nil(t, printAll(&buf))
	assert.Equal(t, "1\tbuy milk\n2\tbuy eggs\n3\tcall mom\n", buf.String())
}

func TestPrintSearch(t *testing.T) {
	setupClient(t)
	var buf bytes.Buffer
	require.Nil(t, printSearch(&buf, "buy"))
	assert.Equal(t, "2\tbuy eggs\n1\tbuy milk\n", buf.String())
}

func TestPrintItemByID(t *testing.T) {
	setupClient(t)
	var buf bytes.Buffer
	todo, err := printItemByID(&buf, 2)
	require.Nil(t, err)
	assert.Equal(t, int64(2), todo.ID)
	assert.Equal(t, "Name: buy eggs\ndone: true\n", buf.String())

	buf.Reset()
	_, err = printItemByID(&buf, 42)
	assert.True(t, errors.Is(err, errNotFound))
	assert.Empty(t, buf.String())
}

func TestParseItem(t *testing.T) {
	name, err := parseItem("Name:  walk the dog \ndone: true\n")
	require.Nil(t, err)
	assert.Equal(t, "walk the dog", name)

	_, err = parseItem("Name: \n")
	assert.NotNil(t, err)
	_, err = parseItem("done: true\n")
	assert.NotNil(t, err)
}

func TestLineHelpers(t *testing.T) {
	assert.Equal(t, 123, lineNumber("123\tfoo"))
	assert.Equal(t, 0, lineNumber("foo"))
	assert.Equal(t, "foo bar", skipField("12\t\tfoo bar"))
	assert.Equal(t, "plain", skipField("plain"))
}
