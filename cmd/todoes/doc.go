// The todoes program is an acme user interface to a todoes backend, e.g., the one served by todoesd.
//
// The backend base URL is read from TODOES_URL (default http://localhost:8080/api/), in the environment or in a .env
// file in the current directory. If TODOES_WIRE_LOG is set, all requests and responses are logged to that file.
//
// When launched, it creates an initial window listing all todoes, /todo/all. Right-clicking a todo id opens the
// todo in its own window, where the name can be edited after "Name: " and saved with Put. Other lines in the todo
// window show properties the client doesn't know about; they are sent back unchanged.
//
// Commands: All opens the list of all todoes; Search foo opens the todoes whose name contains foo; New opens a
// window for a new todo; Get reloads; Put saves (PutDel saves and closes); Sort toggles sorting by id and by name;
// Zap deletes the todo in an item window, or Zap 1234 deletes todo 1234 from any window.
//
// The client never reports errors, so a failed Put or Zap looks like a successful one, except that the window
// contents won't reflect the change after the reload. Failures are logged to standard error.
package main // import "github.com/nicolagi/todoes/cmd/todoes"
