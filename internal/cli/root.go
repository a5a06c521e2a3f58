package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/julianstephens/habitlog/internal/storage"
)

// Context is handed to every command's Run method
type Context struct {
	Store storage.Provider
	// DSN is the resolved --db value: a SQLite path or a PostgreSQL connection string
	DSN string
	Out io.Writer
}

func NewContext(store storage.Provider, dsn string) *Context {
	return &Context{Store: store, DSN: dsn, Out: os.Stdout}
}

func (c *Context) Printf(format string, args ...interface{}) {
	fmt.Fprintf(c.Out, format, args...)
}

func (c *Context) Println(args ...interface{}) {
	fmt.Fprintln(c.Out, args...)
}

// IsSQLite reports whether the context points at a SQLite database file
func (c *Context) IsSQLite() bool {
	return !IsPostgres(c.DSN)
}
