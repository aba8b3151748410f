package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"

	"github.com/roach88/skuquery/internal/catalog"
	"github.com/roach88/skuquery/internal/query"
	"github.com/roach88/skuquery/internal/savedquery"
	"github.com/roach88/skuquery/internal/schema"
	"github.com/roach88/skuquery/internal/share"
)

// request is a query read from a file, stdin or share parameters, plus
// whether it carried its own pagination window.
type request struct {
	Query     query.Query
	HasWindow bool
}

// loadSnapshot reads a JSON or YAML record file.
func loadSnapshot(path string) (*catalog.Snapshot, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, WrapExitError(ExitCommandError, fmt.Sprintf("snapshot file not found: %s", path), err)
	}
	snap, err := catalog.LoadFile(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load snapshot", err)
	}
	return snap, nil
}

// loadSchema compiles the CUE attribute schema in dir.
func loadSchema(dir string) (*schema.Schema, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, fmt.Sprintf("schema directory not found: %s", dir), err)
	}
	if !info.IsDir() {
		return nil, NewExitError(ExitCommandError, fmt.Sprintf("not a directory: %s", dir))
	}
	s, err := schema.LoadDir(dir)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load schema", err)
	}
	return s, nil
}

// readRequest parses a JSON query document. "-" reads stdin.
// Parse errors keep their query error code so callers can report them.
func readRequest(path string, stdin io.Reader) (request, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return request{}, WrapExitError(ExitCommandError, fmt.Sprintf("failed to read request %s", path), err)
	}
	return parseRequest(data)
}

func parseRequest(data []byte) (request, error) {
	q, err := query.Parse(data)
	if err != nil {
		return request{}, err
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return request{}, err
	}
	_, has := doc["pagination"]
	return request{Query: q, HasWindow: has}, nil
}

// shareRequest decodes URL share parameters such as
// "search=mouse&filter_brand=Tech&sort=price&order=desc".
func shareRequest(raw string) (request, error) {
	values, err := url.ParseQuery(raw)
	if err != nil {
		return request{}, &query.Error{Code: query.CodeMalformedQuery, Message: err.Error()}
	}
	q, err := share.Decode(values)
	if err != nil {
		return request{}, err
	}
	return request{Query: q, HasWindow: values.Has("limit") || values.Has("offset")}, nil
}

// openStore opens the saved-query database.
func openStore(path string) (*savedquery.Store, error) {
	st, err := savedquery.Open(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open saved query store", err)
	}
	return st, nil
}

// isExitError reports whether err already carries an exit code.
func isExitError(err error) bool {
	var exitErr *ExitError
	return errors.As(err, &exitErr)
}
