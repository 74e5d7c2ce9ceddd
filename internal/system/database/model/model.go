/*
 * Copyright (c) 2025, Brokkr Project (https://github.com/brokkr-id).
 *
 * Brokkr Project licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

// Package model defines the connection and transaction wrappers the database
// client is built on.
package model

import "database/sql"

// DBInterface is the thin connection abstraction the client operates on, so
// tests can substitute the underlying pool.
type DBInterface interface {
	// Query runs a row-returning statement.
	Query(query string, args ...any) (*sql.Rows, error)
	// Exec runs a statement that returns no rows.
	Exec(query string, args ...any) (sql.Result, error)
	// Begin opens a new transaction on the pool.
	Begin() (*sql.Tx, error)
	// Close releases the underlying pool.
	Close() error
}

// TxInterface is the transaction handle handed out by the client. Statements
// run through it are atomic as a group.
type TxInterface interface {
	// Exec runs a statement inside the transaction.
	Exec(query string, args ...any) (sql.Result, error)
	// Commit makes the transaction's writes durable.
	Commit() error
	// Rollback discards the transaction's writes.
	Rollback() error
}

// DB adapts a *sql.DB to DBInterface.
type DB struct {
	pool *sql.DB
}

// NewDB wraps the given *sql.DB.
func NewDB(pool *sql.DB) DBInterface {
	return &DB{pool: pool}
}

func (d *DB) Query(query string, args ...any) (*sql.Rows, error) {
	return d.pool.Query(query, args...)
}

func (d *DB) Exec(query string, args ...any) (sql.Result, error) {
	return d.pool.Exec(query, args...)
}

func (d *DB) Begin() (*sql.Tx, error) {
	return d.pool.Begin()
}

func (d *DB) Close() error {
	return d.pool.Close()
}

// Tx adapts a *sql.Tx to TxInterface.
type Tx struct {
	tx *sql.Tx
}

// NewTx wraps the given *sql.Tx.
func NewTx(tx *sql.Tx) TxInterface {
	return &Tx{tx: tx}
}

func (t *Tx) Exec(query string, args ...any) (sql.Result, error) {
	return t.tx.Exec(query, args...)
}

func (t *Tx) Commit() error {
	return t.tx.Commit()
}

func (t *Tx) Rollback() error {
	return t.tx.Rollback()
}
