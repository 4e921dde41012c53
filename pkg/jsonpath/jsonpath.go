// Package jsonpath pulls values out of JSON documents with a small subset
// of JSONPath: $.a.b, $.a[0], $['a'], and $.a[*].b wildcards over arrays.
package jsonpath

import (
	"strings"

	"github.com/containerd/errdefs"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

// ExtractNumbers returns every number selected by path. Arrays are
// flattened, so "$.latencies" and "$.requests[*].latency" both yield one
// entry per element. Selecting anything but numbers is an error.
func ExtractNumbers(json, path string) ([]float64, error) {
	var numbers []float64
	err := extract(json, path, func(r gjson.Result) error {
		if r.Type != gjson.Number {
			return errors.Wrapf(errdefs.ErrInvalidArgument, "%s: expected a number, got %s", path, r.Type)
		}
		numbers = append(numbers, r.Float())
		return nil
	})
	return numbers, err
}

// ExtractStrings returns the string form of every scalar selected by path.
// null selects the empty string.
func ExtractStrings(json, path string) ([]string, error) {
	var values []string
	err := extract(json, path, func(r gjson.Result) error {
		if r.IsObject() {
			return errors.Wrapf(errdefs.ErrInvalidArgument, "%s: expected a scalar, got an object", path)
		}
		values = append(values, r.String())
		return nil
	})
	return values, err
}

func extract(json, path string, visit func(gjson.Result) error) error {
	if json == "" {
		return errors.Wrap(errdefs.ErrInvalidArgument, "empty JSON document")
	}
	if path == "" {
		return errors.Wrap(errdefs.ErrInvalidArgument, "empty JSONPath expression")
	}
	if !gjson.Valid(json) {
		return errors.Wrap(errdefs.ErrInvalidArgument, "invalid JSON document")
	}

	result := gjson.Get(json, convertToGjsonPath(path))
	if !result.Exists() {
		return errors.Wrapf(errdefs.ErrNotFound, "path not found: %s", path)
	}
	return walk(result, visit)
}

func walk(r gjson.Result, visit func(gjson.Result) error) error {
	if !r.IsArray() {
		return visit(r)
	}
	var err error
	r.ForEach(func(_, item gjson.Result) bool {
		err = walk(item, visit)
		return err == nil
	})
	return err
}

// convertToGjsonPath converts a JSONPath expression to gjson syntax:
// $.users[0].name becomes users.0.name and $.users[*].id becomes users.#.id.
// A trailing wildcard is dropped since arrays are flattened anyway.
func convertToGjsonPath(path string) string {
	path = strings.TrimPrefix(strings.TrimSpace(path), "$")

	replacer := strings.NewReplacer(
		"['", ".", "']", "",
		`["`, ".", `"]`, "",
		"[*]", ".#",
		"[", ".", "]", "",
	)
	path = replacer.Replace(path)
	path = strings.TrimPrefix(path, ".")
	path = strings.TrimSuffix(strings.TrimSuffix(path, "#"), ".")

	if path == "" {
		return "@this"
	}
	return path
}
