package sqlite

import "context"

type recoveryCodesRepo struct {
	q queryer
}

func (r *recoveryCodesRepo) CreateRecoveryCode(ctx context.Context, userID string, codeHash string) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO recovery_codes (user_id, code_hash) VALUES (?, ?)`,
		userID, codeHash)
	return mapConstraint(err)
}

func (r *recoveryCodesRepo) DeleteAllRecoveryCodes(ctx context.Context, userID string) error {
	_, err := r.q.ExecContext(ctx,
		`DELETE FROM recovery_codes WHERE user_id = ?`, userID)
	return err
}

func (r *recoveryCodesRepo) CountUserRecoveryCodes(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM recovery_codes WHERE user_id = ?`, userID).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}
