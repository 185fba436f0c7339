package storage

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/matryer/is"
)

func testSetup(t *testing.T) (context.Context, *Store) {
	ctx := context.Background()

	s, err := New(ctx, NewConfig(t.TempDir()))
	if err != nil {
		t.Fatal(err)
	}

	return ctx, s
}

func TestReadMissingDocumentReturnsErrNotExist(t *testing.T) {
	is := is.New(t)
	ctx, s := testSetup(t)

	_, err := s.Read(ctx, "nosuchdocument.json")
	is.True(errors.Is(err, ErrNotExist))
}

func TestWriteThenReadRoundTrips(t *testing.T) {
	is := is.New(t)
	ctx, s := testSetup(t)

	err := s.Write(ctx, "doc.json", []byte(`{"hello":"world"}`))
	is.NoErr(err)

	b, err := s.Read(ctx, "doc.json")
	is.NoErr(err)
	is.Equal(string(b), `{"hello":"world"}`)
}

func TestWriteReplacesEntireDocument(t *testing.T) {
	is := is.New(t)
	ctx, s := testSetup(t)

	is.NoErr(s.Write(ctx, "doc.json", []byte(`{"a":1,"b":2}`)))
	is.NoErr(s.Write(ctx, "doc.json", []byte(`{"c":3}`)))

	b, err := s.Read(ctx, "doc.json")
	is.NoErr(err)
	is.Equal(string(b), `{"c":3}`)
}

func TestExists(t *testing.T) {
	is := is.New(t)
	ctx, s := testSetup(t)

	is.True(!s.Exists(ctx, "doc.json"))
	is.NoErr(s.Write(ctx, "doc.json", []byte(`[]`)))
	is.True(s.Exists(ctx, "doc.json"))
}

func TestRejectsDocumentNamesWithPathSeparators(t *testing.T) {
	is := is.New(t)
	ctx, s := testSetup(t)

	_, err := s.Read(ctx, "../etc/passwd")
	is.True(errors.Is(err, ErrInvalidName))

	err = s.Write(ctx, "a/b.json", []byte(`{}`))
	is.True(errors.Is(err, ErrInvalidName))
}

func TestUpdateAppendsUnderLock(t *testing.T) {
	is := is.New(t)
	ctx, s := testSetup(t)

	append1 := func(current []byte, exists bool) ([]byte, error) {
		list := []int{}
		if exists {
			if err := json.Unmarshal(current, &list); err != nil {
				return nil, err
			}
		}
		list = append(list, len(list))
		return json.Marshal(list)
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Update(ctx, "list.json", append1)
		}()
	}
	wg.Wait()

	list, err := ReadDocument[[]int](ctx, s, "list.json")
	is.NoErr(err)
	is.Equal(len(list), 10)
}

func TestReadDocumentReportsCorruptJSON(t *testing.T) {
	is := is.New(t)
	ctx, s := testSetup(t)

	is.NoErr(s.Write(ctx, "doc.json", []byte(`{not json`)))

	_, err := ReadDocument[map[string]any](ctx, s, "doc.json")
	is.True(errors.Is(err, ErrReadFailed))
}

func TestPreflightToleratesAbsentDocuments(t *testing.T) {
	is := is.New(t)
	ctx, s := testSetup(t)

	err := s.Preflight(ctx, "boundary.geojson")
	is.NoErr(err)
}

func TestPreflightCreatesMissingDataDirectory(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()

	dir := filepath.Join(t.TempDir(), "data")
	s, err := New(ctx, NewConfig(dir))
	is.NoErr(err)

	is.NoErr(s.Preflight(ctx, "boundary.geojson"))

	_, err = os.Stat(dir)
	is.NoErr(err)
}

func TestPreflightFailsOnUnreachableLocation(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()

	parent := t.TempDir()
	blocker := filepath.Join(parent, "data")
	is.NoErr(os.WriteFile(blocker, []byte("not a directory"), 0o644))

	s, err := New(ctx, NewConfig(filepath.Join(blocker, "docs")))
	is.NoErr(err)

	err = s.Preflight(ctx, "boundary.geojson")
	is.True(err != nil)
}
