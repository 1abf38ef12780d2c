package browser

import (
	"context"
	"encoding/json"
	"fmt"
)

// bridgeScript installs window.__Bridge, the request proxy scripts use to
// call same-origin endpoints with the page's cookies. Running it twice is a no-op.
const bridgeScript = `(() => {
  if (window.__Bridge) return true;
  window.__Bridge = {
    fetch: async ({ method = 'GET', url, headers = {}, body } = {}) => {
      const res = await fetch(url, { method, headers, body, credentials: 'include' });
      const data = await res.text();
      if (!res.ok) throw new Error('bridge fetch ' + method + ' ' + url + ': ' + res.status);
      return { status: res.status, data };
    },
  };
  return true;
})()`

const bridgeReadyScript = `() => typeof window.__Bridge !== 'undefined'`

// toText normalises an evaluation result to the text the driver expects.
func toText(v any) (string, error) {
	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return t, nil
	case bool:
		if t {
			return "true", nil
		}
		return "false", nil
	}

	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to encode script result %T: %w", v, err)
	}

	return string(b), nil
}

// await runs a blocking browser call and gives up when ctx is done. The call
// itself keeps running; the browser APIs used here cannot be interrupted.
func await[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	type result struct {
		v   T
		err error
	}

	ch := make(chan result, 1)
	go func() {
		v, err := fn()
		ch <- result{v: v, err: err}
	}()

	select {
	case r := <-ch:
		return r.v, r.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
