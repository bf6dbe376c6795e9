package api

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/planit-app/planit/internal/optional"
)

// refetchConcurrency はミューテーション後に並行して再取得するクエリ数の上限。
const refetchConcurrency = 4

// Status はスキップ可能なクエリの結果状態。
type Status int

const (
	// StatusSkipped はパラメータ未確定のためクエリを実行しなかったことを表す。
	StatusSkipped Status = iota
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusSkipped:
		return "skipped"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Result はスキップ可能なクエリの結果。
type Result[T any] struct {
	Data   T
	Status Status
	Err    error
}

// Skipped はクエリが実行されなかったかを返す。
func (r Result[T]) Skipped() bool {
	return r.Status == StatusSkipped
}

// QueryKey はエンドポイント名と引数からキャッシュキーを生成する。
func QueryKey(name, arg string) string {
	if arg == "" {
		return name
	}
	return name + "(" + arg + ")"
}

// query はキャッシュを経由してクエリを実行する。
func query[T any](ctx context.Context, c *Client, name, arg string, provides []TagRef, req request) (T, error) {
	var zero T

	v, err := c.cache.load(ctx, QueryKey(name, arg), name, provides, func(ctx context.Context) (any, error) {
		var out T
		if err := c.transport.do(ctx, name, req, &out); err != nil {
			return nil, err
		}
		return out, nil
	})
	if err != nil {
		return zero, err
	}
	return v.(T), nil
}

// skippable はパラメータが無ければクエリを実行せず StatusSkipped を返す。
func skippable[P, T any](ctx context.Context, param optional.Value[P], run func(ctx context.Context, p P) (T, error)) Result[T] {
	p, ok := param.Get()
	if !ok {
		return Result[T]{Status: StatusSkipped}
	}
	data, err := run(ctx, p)
	if err != nil {
		return Result[T]{Status: StatusError, Err: err}
	}
	return Result[T]{Data: data, Status: StatusSuccess}
}

// mutate はミューテーションを実行し、成功時に invalidates のタグを失効させる。
// 失効したエントリのうち購読者がいるものは戻る前に再取得する。
func mutate[T any](ctx context.Context, c *Client, name string, req request, invalidates []TagRef) (T, error) {
	var out T
	if err := c.transport.do(ctx, name, req, &out); err != nil {
		return out, err
	}
	c.invalidate(ctx, invalidates)
	return out, nil
}

// Invalidate は指定タグのキャッシュを失効させ、購読中のクエリを再取得する。
func (c *Client) Invalidate(ctx context.Context, tags ...TagRef) {
	c.invalidate(ctx, tags)
}

func (c *Client) invalidate(ctx context.Context, tags []TagRef) {
	for _, t := range tags {
		c.recorder.RecordInvalidation(string(t.Type))
	}

	entries := c.cache.invalidate(tags)
	if len(entries) == 0 {
		return
	}

	var g errgroup.Group
	g.SetLimit(refetchConcurrency)
	for _, e := range entries {
		g.Go(func() error {
			if _, err := c.cache.refresh(ctx, e); err != nil {
				c.logger.Warn("キャッシュの再取得に失敗しました",
					slog.String("key", e.key),
					slog.String("error", err.Error()),
				)
				return err
			}
			return nil
		})
	}
	// 再取得の失敗はログのみ
	_ = g.Wait()
}

// ビューが購読する主要クエリのキャッシュキー。
const (
	KeyAuthUser     = "getAuthUser"
	KeyUsers        = "getUsers"
	KeyGroups       = "getGroups"
	KeyGroupMembers = "getGroupMembers"
)
