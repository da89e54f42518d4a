package objfind

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	_ "github.com/mattn/go-sqlite3"

	"github.com/objfind/objfind/match"
)

// RefDB stores the reference (ground-truth) coordinates that batch runs
// score their candidates against. The fixture is calibration data, so
// it lives in a database instead of the binary.
type RefDB struct {
	db *sql.DB
}

func NewRefDB(file string) (*RefDB, error) {
	db, err := sql.Open("sqlite3", file)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS reference (id INTEGER PRIMARY KEY NOT NULL, x INTEGER NOT NULL, y INTEGER NOT NULL)"); err != nil {
		return nil, err
	}

	return &RefDB{
		db: db,
	}, nil
}

// ImportCSV replaces the reference table with the id,x,y records read
// from file.
func (db *RefDB) ImportCSV(file string) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 3

	tx, err := db.db.Begin()
	if err != nil {
		return err
	}

	if _, err = tx.Exec("DELETE FROM reference"); err != nil {
		tx.Rollback()
		return err
	}

	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			tx.Rollback()
			return err
		}

		var id, x, y int
		for i, field := range []*int{&id, &x, &y} {
			if *field, err = strconv.Atoi(record[i]); err != nil {
				tx.Rollback()
				return fmt.Errorf("bad reference record %v: %w", record, err)
			}
		}

		if _, err = tx.Exec("INSERT OR REPLACE INTO reference (id, x, y) VALUES (?, ?, ?)", id, x, y); err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}

// FindReferenceByID returns the reference location for id, or nil when
// there is none.
func (db *RefDB) FindReferenceByID(id int) (*match.Point, error) {
	var p match.Point
	switch err := db.db.QueryRow("SELECT x, y FROM reference WHERE id = ?", id).Scan(&p.X, &p.Y); err {
	case sql.ErrNoRows:
		return nil, nil
	case nil:
		return &p, nil
	default:
		return nil, err
	}
}

func (db *RefDB) Close() error {
	return db.db.Close()
}
