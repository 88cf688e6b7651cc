// Package collector はニュース収集パイプラインを提供する。
// スケジューラ、フェッチャー、パーサー、重複判定、翻訳ゲートを連結し、
// 定期的な収集サイクルとして実行する。
package collector

import (
	"context"
	"log/slog"
	"time"
)

// CycleRunner は収集サイクルの実行インターフェース。
type CycleRunner interface {
	// RunCycle は1回の収集サイクルを実行する。
	RunCycle(ctx context.Context) error
}

// Scheduler は収集サイクルの定期実行を行う。
// 起動直後に1回実行し、以降はティッカー間隔で繰り返す。
type Scheduler struct {
	runner CycleRunner
	logger *slog.Logger
}

// NewScheduler はSchedulerの新しいインスタンスを生成する。
func NewScheduler(runner CycleRunner, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		runner: runner,
		logger: logger,
	}
}

// Start は指定間隔のティッカーでスケジューラを起動する。
// コンテキストがキャンセルされるまで実行を継続する。
func (s *Scheduler) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("収集スケジューラを開始しました",
		slog.Duration("interval", interval),
	)

	// 起動直後に1回実行
	if err := s.runner.RunCycle(ctx); err != nil {
		s.logger.Error("収集サイクルの実行に失敗しました",
			slog.String("error", err.Error()),
		)
	}

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("収集スケジューラを停止しました")
			return
		case <-ticker.C:
			if err := s.runner.RunCycle(ctx); err != nil {
				s.logger.Error("収集サイクルの実行に失敗しました",
					slog.String("error", err.Error()),
				)
			}
		}
	}
}
