package storage

import (
	_ "embed"
)

const (
	upsertArraySQL = `
INSERT INTO arrays (name,
                    length,
                    data,
                    created_at,
                    updated_at)
VALUES (?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
ON CONFLICT (name) DO UPDATE SET length     = excluded.length,
                                 data       = excluded.data,
                                 updated_at = CURRENT_TIMESTAMP`

	selectArraySQL = `
SELECT 
    length, 
    data 
FROM arrays 
WHERE 
    name = ?`

	selectArraysSQL = `
SELECT 
    name, 
    length, 
    created_at, 
    updated_at 
FROM arrays 
ORDER BY name`

	deleteArraySQL = `
DELETE FROM arrays 
WHERE 
    name = ?`
)

//go:embed schema.sql
var initSchemaSQL string
