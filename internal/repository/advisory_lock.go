package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// collectCycleLockKey は収集サイクル排他用のアドバイザリロックキー。
// "newsdesk collect" から適当に採った固定値。変更するとローリング
// デプロイ中の新旧プロセスが互いのロックを見なくなる点に注意。
const collectCycleLockKey int64 = 727374_8101

// AdvisoryLock はPostgreSQLのセッションレベルアドバイザリロックによる
// 収集サイクルの排他制御。単一インスタンス前提を仮定せず、
// 水平スケール時や前サイクルのオーバーラン時に多重実行を防ぐ。
type AdvisoryLock struct {
	conn *sql.Conn
	db   *sql.DB
}

// NewAdvisoryLock はAdvisoryLockを生成する。
func NewAdvisoryLock(db *sql.DB) *AdvisoryLock {
	return &AdvisoryLock{db: db}
}

// TryLock はpg_try_advisory_lockでロックの取得を試みる。
// セッションレベルロックのため専用コネクションを確保して保持する。
// 取得できなかった場合はfalseを返し、コネクションは即座に返却する。
func (l *AdvisoryLock) TryLock(ctx context.Context) (bool, error) {
	if l.conn != nil {
		return false, fmt.Errorf("アドバイザリロックは既に保持されています")
	}

	conn, err := l.db.Conn(ctx)
	if err != nil {
		return false, fmt.Errorf("ロック用コネクションの取得に失敗しました: %w", err)
	}

	var acquired bool
	if err := conn.QueryRowContext(ctx,
		`SELECT pg_try_advisory_lock($1)`, collectCycleLockKey,
	).Scan(&acquired); err != nil {
		conn.Close()
		return false, fmt.Errorf("アドバイザリロックの取得に失敗しました: %w", err)
	}

	if !acquired {
		conn.Close()
		return false, nil
	}

	l.conn = conn
	return true, nil
}

// Unlock は保持中のアドバイザリロックを解放し、コネクションを返却する。
func (l *AdvisoryLock) Unlock(ctx context.Context) error {
	if l.conn == nil {
		return nil
	}

	_, err := l.conn.ExecContext(ctx,
		`SELECT pg_advisory_unlock($1)`, collectCycleLockKey,
	)
	closeErr := l.conn.Close()
	l.conn = nil

	if err != nil {
		return fmt.Errorf("アドバイザリロックの解放に失敗しました: %w", err)
	}
	return closeErr
}
