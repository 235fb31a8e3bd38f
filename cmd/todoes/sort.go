package main

import "github.com/nicolagi/todoes"

type todoesByID []*todoes.Todo

func (all todoesByID) Len() int {
	return len(all)
}

func (all todoesByID) Swap(i, j int) {
	all[i], all[j] = all[j], all[i]
}

func (all todoesByID) Less(i, j int) bool {
	return all[i].ID < all[j].ID
}
