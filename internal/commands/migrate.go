package commands

import (
	"fmt"
	"log"

	"presencia/backend/internal/pkg/repository/postgresql"

	"github.com/pkg/errors"
)

// ErrHelp provides context that help was given.
var ErrHelp = errors.New("provided help")

type Scheme struct {
	Index       int
	Description string
	Query       string
}

var scheme = []Scheme{
	{
		Index:       1,
		Description: "CREATE TYPE \"user_role\" AS ENUM",
		Query: `
        CREATE TYPE "user_role" AS ENUM ('ADMIN','WAITER','EXTRA_WAITER','KITCHEN','SECURITY','OTHER','DASHBOARD');`,
	},
	{
		Index:       2,
		Description: "Create table: users.",
		Query: `
        CREATE TABLE IF NOT EXISTS users (
            id serial primary key,
            legajo text not null,
            dni text,
            password text not null,
            role user_role,
            full_name text,
            dress_code text,
            reference_image text,
            schedule jsonb default '[]'::jsonb,
            assigned_locations jsonb default '[]'::jsonb,
            created_at timestamp default now(),
            created_by int references users(id),
            updated_at timestamp,
            updated_by int references users(id),
            deleted_at timestamp,
            deleted_by int references users(id)
        );`,
	},
	{
		Index:       3,
		Description: "Create admin with legajo: Admin01, password: 1",
		Query: `
        INSERT INTO users(legajo, role, password)
        SELECT 'Admin01', 'ADMIN', '$2a$10$NKtnMwDPFSQLG6uOi4Zqheru5Ygbj9TWFHjpl478rRSaO5cJ9QuH2'
        WHERE NOT EXISTS (SELECT legajo FROM users WHERE legajo = 'Admin01');
        `,
	},
	{
		Index:       4,
		Description: "Create dashboard login with legajo: Dashboard01, password: 1",
		Query: `
        INSERT INTO users(legajo, role, password)
        SELECT 'Dashboard01', 'DASHBOARD', '$2a$10$NKtnMwDPFSQLG6uOi4Zqheru5Ygbj9TWFHjpl478rRSaO5cJ9QuH2'
        WHERE NOT EXISTS (SELECT legajo FROM users WHERE legajo = 'Dashboard01');
        `,
	},
	{
		Index:       5,
		Description: "Create table: locations.",
		Query: `
        CREATE TABLE IF NOT EXISTS locations (
            id serial primary key,
            name text not null,
            address text,
            city text,
            latitude float not null,
            longitude float not null,
            radius float not null default 100,
            created_at timestamp default now(),
            created_by int references users(id),
            updated_at timestamp,
            updated_by int references users(id),
            deleted_at timestamp,
            deleted_by int references users(id)
        );`,
	},
	{
		Index:       6,
		Description: "Create table: log_entries.",
		Query: `
        CREATE TABLE IF NOT EXISTS log_entries (
            id serial primary key,
            user_id int not null references users(id),
            user_name text not null,
            legajo text not null,
            ts timestamptz not null,
            type varchar(20) not null,
            location_id int references locations(id),
            location_name text,
            location_status varchar(20) not null,
            schedule_status varchar(20) not null,
            dress_code_status varchar(20) not null,
            identity_status varchar(20) not null,
            photo_evidence text,
            ai_feedback text,
            created_at timestamp default now()
        );`,
	},
	{
		Index:       7,
		Description: "Index log_entries for the most-recent-record lookups.",
		Query: `
        CREATE INDEX IF NOT EXISTS log_entries_user_ts_idx ON log_entries (user_id, ts DESC);
        CREATE INDEX IF NOT EXISTS log_entries_ts_idx ON log_entries (ts);`,
	},
	{
		Index:       8,
		Description: "Create table: settings.",
		Query: `
        CREATE TABLE IF NOT EXISTS settings (
            id serial primary key,
            company_name varchar(250) not null,
            logo_url text,
            created_at timestamp default now(),
            created_by int references users(id),
            updated_at timestamp,
            updated_by int references users(id),
            deleted_at timestamp,
            deleted_by int references users(id)
        );`,
	},
	{
		Index:       9,
		Description: "Seed settings row.",
		Query: `
        INSERT INTO settings (id, company_name, created_by, updated_by)
        SELECT 1, 'Presencia', 1, 1
        WHERE NOT EXISTS (SELECT id FROM settings WHERE id = 1);`,
	},
}

// Migrate creates the scheme in the database.
func Migrate(db *postgresql.Database) {
	for _, s := range scheme {
		if _, err := db.Query(s.Query); err != nil {
			log.Fatalln("migrate error", err)
		}
	}
}

func MigrateUP(db *postgresql.Database) {
	var (
		version int
		dirty   bool
		er      *string
	)
	err := db.QueryRow("SELECT version, dirty, error FROM schema_migrations").Scan(&version, &dirty, &er)
	if err != nil {
		if err.Error() == `ERROR: relation "schema_migrations" does not exist (SQLSTATE=42P01)` {
			if _, err = db.Exec(`
				CREATE TABLE IF NOT EXISTS schema_migrations (version int not null, dirty bool not null, error text);
				DELETE FROM schema_migrations;
				INSERT INTO schema_migrations (version, dirty) values (0, false);
			`); err != nil {
				log.Fatalln("migrate schema_migrations create error", err)
			}
			version = 0
			dirty = false
		} else {
			log.Fatalln("migrate schema_migrations scan: ", err)
		}
	}

	if dirty {
		for _, v := range scheme {
			if v.Index == version {
				if _, err = db.Exec(v.Query); err != nil {
					if _, err = db.Exec(fmt.Sprintf(`UPDATE schema_migrations SET error = '%s'`, err.Error())); err != nil {
						log.Fatalln("migrate error", err)
					}
					log.Fatalln(fmt.Sprintf("migrate error version: %d", version), err)
				}
				if _, err = db.Exec(`UPDATE schema_migrations SET dirty = false, error = null`); err != nil {
					log.Fatalln("migrate error", err)
				}
			}
		}
	}

	for _, s := range scheme {
		if s.Index > version {
			if _, err = db.Exec(s.Query); err != nil {
				if _, err = db.Exec(fmt.Sprintf(`UPDATE schema_migrations SET error = '%s', version = %d, dirty = true`, err.Error(), s.Index)); err != nil {
					log.Fatalln("migrate error", err)
				}
				log.Fatalln(fmt.Sprintf("migrate error version: %d", s.Index), err)
			}
			if _, err = db.Exec(fmt.Sprintf(`UPDATE schema_migrations SET version = %d`, s.Index)); err != nil {
				log.Fatalln("migrate error", err)
			}
		}
	}
}
