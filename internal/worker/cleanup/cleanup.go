// Package cleanup は期限切れセッションの定期削除ジョブを提供する。
// 期限を過ぎたセッション行はログインに使えないため、一定間隔でまとめて削除する。
package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// SessionPurger は期限切れセッションの削除を抽象化する。
// repository.SessionRepository が満たす。
type SessionPurger interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// Recorder は削除件数の記録先。metrics.Collector が満たす。
type Recorder interface {
	RecordSessionsCleaned(count int64)
}

// CleanupJob は期限切れセッションの削除ジョブ。
// 削除対象がなくてもエラーにならず、何度実行しても結果は変わらない。
type CleanupJob struct {
	sessions SessionPurger
	recorder Recorder
	logger   *slog.Logger
}

// NewCleanupJob は新しいCleanupJobを生成する。recorder は nil でもよい。
func NewCleanupJob(sessions SessionPurger, recorder Recorder, logger *slog.Logger) *CleanupJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &CleanupJob{
		sessions: sessions,
		recorder: recorder,
		logger:   logger,
	}
}

// Run は期限切れセッションを1回削除する。
func (j *CleanupJob) Run(ctx context.Context) error {
	start := time.Now()

	deleted, err := j.sessions.DeleteExpired(ctx)
	if err != nil {
		j.logger.Error("セッションクリーンアップの実行に失敗しました",
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("session cleanup failed: %w", err)
	}

	if j.recorder != nil {
		j.recorder.RecordSessionsCleaned(deleted)
	}

	j.logger.Info("セッションクリーンアップが完了しました",
		slog.Int64("deleted_count", deleted),
		slog.Float64("duration_ms", float64(time.Since(start).Milliseconds())),
	)
	return nil
}

// Start は起動直後に1回実行し、以降 interval ごとに Run を繰り返す。
// ctx がキャンセルされるまで戻らない。個々の失敗はログに残して継続する。
func (j *CleanupJob) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	j.logger.Info("セッションクリーンアップを開始しました",
		slog.Duration("interval", interval),
	)

	_ = j.Run(ctx)
	for {
		select {
		case <-ctx.Done():
			j.logger.Info("セッションクリーンアップを停止しました")
			return
		case <-ticker.C:
			_ = j.Run(ctx)
		}
	}
}
