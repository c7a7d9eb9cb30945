package openml

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Filters restricts a listing. Keys are OpenML filter names such as limit, offset,
// status, tag, data_id, data_name or a quality name.
type Filters map[string]string

// Range formats an inclusive numeric range filter value.
func Range(min, max int) string {
	return fmt.Sprintf("%d..%d", min, max)
}

func (f Filters) values(op string) (url.Values, error) {
	q := url.Values{}
	for k, v := range f {
		if strings.TrimSpace(k) == "" {
			return nil, usage(op, "empty filter name")
		}
		switch k {
		case "limit", "offset":
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 || (k == "limit" && n == 0) {
				return nil, usage(op, "invalid %s %q", k, v)
			}
		case "api_key":
			return nil, usage(op, "api_key is not a filter")
		}
		q.Set(k, v)
	}
	return q, nil
}

// RunFilter selects runs by any combination of its fields; at least one must be set.
type RunFilter struct {
	Tasks     []int
	Setups    []int
	Flows     []int
	Uploaders []int
	Tag       string
}

func (f RunFilter) values(op string) (url.Values, error) {
	q := url.Values{}
	set := func(name string, ids []int) {
		if len(ids) == 0 {
			return
		}
		s := make([]string, len(ids))
		for i, id := range ids {
			s[i] = strconv.Itoa(id)
		}
		q.Set(name, strings.Join(s, ","))
	}
	set("task", f.Tasks)
	set("setup", f.Setups)
	set("flow", f.Flows)
	set("uploader", f.Uploaders)
	if f.Tag != "" {
		q.Set("tag", f.Tag)
	}
	if len(q) == 0 {
		return nil, usage(op, "at least one of task, setup, flow, uploader or tag is required")
	}
	return q, nil
}
