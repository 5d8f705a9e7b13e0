package storage

// SQL used by Postgres.
const (
	queryGetValue = `SELECT value FROM kv_store WHERE key = $1`

	queryUpsertValue = `
		INSERT INTO kv_store (key, value, updated_at)
		VALUES (@key, @value, now())
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = now()`

	queryDeleteValue = `DELETE FROM kv_store WHERE key = $1`
)
