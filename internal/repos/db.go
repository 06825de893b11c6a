package repos

import (
	"log"
	"strings"
	"sync"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"
)

// SeedPassword is the password of every seeded account.
const SeedPassword = "Passw0rd!"

func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// every new connection to :memory: is a fresh, empty database
	if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}

	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	if err := seedCategories(db); err != nil {
		return nil, err
	}
	if err := seedUsers(db); err != nil {
		return nil, err
	}
	if err := seedProducts(db); err != nil {
		return nil, err
	}
	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA foreign_keys = ON;

-- Users (profile), keyed by auth identity
CREATE TABLE IF NOT EXISTS users(
  user_id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  email TEXT NOT NULL,
  phone TEXT NOT NULL DEFAULT '',
  user_role TEXT NOT NULL DEFAULT 'vendor' CHECK (user_role IN ('admin','vendor','user')),
  approved TEXT NOT NULL DEFAULT 'Waiting' CHECK (approved IN ('Waiting','Accepted','Rejected')),
  signin_type TEXT NOT NULL DEFAULT 'email' CHECK (signin_type IN ('google','email')),
  onboarding_step TEXT NULL,
  file_url TEXT NOT NULL DEFAULT '',
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(LOWER(email));

CREATE TABLE IF NOT EXISTS credentials(
  user_id TEXT PRIMARY KEY REFERENCES users(user_id) ON DELETE CASCADE,
  email TEXT NOT NULL,
  password_hash TEXT NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_credentials_email ON credentials(LOWER(email));

CREATE TABLE IF NOT EXISTS sessions(
  id TEXT PRIMARY KEY,               -- same value as the 'sid' cookie
  user_id TEXT NULL REFERENCES users(user_id) ON DELETE SET NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  last_seen INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id);

CREATE TABLE IF NOT EXISTS vendor_details(
  user_id TEXT PRIMARY KEY REFERENCES users(user_id) ON DELETE CASCADE,
  optional_1 TEXT NULL,
  optional_2 TEXT NULL
);

-- Category hierarchy (reference data)
CREATE TABLE IF NOT EXISTS categories(
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_categories_name_nocase ON categories(LOWER(name));

CREATE TABLE IF NOT EXISTS sub_categories(
  id TEXT PRIMARY KEY,
  category_id TEXT NOT NULL REFERENCES categories(id) ON DELETE RESTRICT,
  name TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sub_categories_parent ON sub_categories(category_id);

CREATE TABLE IF NOT EXISTS sub_sub_categories(
  id TEXT PRIMARY KEY,
  sub_category_id TEXT NOT NULL REFERENCES sub_categories(id) ON DELETE RESTRICT,
  name TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sub_sub_categories_parent ON sub_sub_categories(sub_category_id);

-- Products
CREATE TABLE IF NOT EXISTS products(
  product_id TEXT PRIMARY KEY,
  approved INTEGER NOT NULL DEFAULT 0,
  uploaded_by TEXT NOT NULL,
  structure TEXT NOT NULL CHECK (structure IN ('structure_1','structure_2')),
  type TEXT NULL CHECK (type IS NULL OR type IN ('Men','Women','Kids','Accessories')),
  category_id TEXT NOT NULL REFERENCES categories(id),
  sub_category_id TEXT NOT NULL REFERENCES sub_categories(id),
  sub_sub_category_id TEXT NOT NULL REFERENCES sub_sub_categories(id),
  discount TEXT NULL,
  details TEXT NOT NULL,
  image TEXT NOT NULL DEFAULT '[]',
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_products_owner    ON products(uploaded_by);
CREATE INDEX IF NOT EXISTS idx_products_category ON products(category_id);
CREATE INDEX IF NOT EXISTS idx_products_approved ON products(approved);

-- Shopper engagement, read for vendor stats
CREATE TABLE IF NOT EXISTS cart(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  user_id TEXT NOT NULL,
  product_id TEXT NOT NULL REFERENCES products(product_id) ON DELETE CASCADE,
  quantity INTEGER NOT NULL DEFAULT 1 CHECK (quantity >= 1),
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_cart_product ON cart(product_id);

CREATE TABLE IF NOT EXISTS liked_products(
  user_id TEXT NOT NULL,
  product_id TEXT NOT NULL REFERENCES products(product_id) ON DELETE CASCADE,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  PRIMARY KEY (user_id, product_id)
);
`
	_, err := db.Exec(schema)
	return err
}

// seedCategories inserts the reference hierarchy (idempotent).
func seedCategories(db *sqlx.DB) error {
	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmts := []string{
		`INSERT INTO categories(id,name) VALUES
		  ('cat-clothing','Clothing'),
		  ('cat-electronics','Electronics'),
		  ('cat-footwear','Footwear'),
		  ('cat-home','Home & Kitchen')
		 ON CONFLICT(id) DO NOTHING`,
		`INSERT INTO sub_categories(id,category_id,name) VALUES
		  ('sub-clothing-tops','cat-clothing','Tops'),
		  ('sub-clothing-bottoms','cat-clothing','Bottoms'),
		  ('sub-elec-audio','cat-electronics','Audio'),
		  ('sub-elec-phones','cat-electronics','Phones'),
		  ('sub-foot-sneakers','cat-footwear','Sneakers'),
		  ('sub-home-kitchen','cat-home','Kitchen'),
		  ('sub-home-decor','cat-home','Decor')
		 ON CONFLICT(id) DO NOTHING`,
		`INSERT INTO sub_sub_categories(id,sub_category_id,name) VALUES
		  ('ssc-tshirts','sub-clothing-tops','T-Shirts'),
		  ('ssc-shirts','sub-clothing-tops','Shirts'),
		  ('ssc-jeans','sub-clothing-bottoms','Jeans'),
		  ('ssc-shorts','sub-clothing-bottoms','Shorts'),
		  ('ssc-headphones','sub-elec-audio','Headphones'),
		  ('ssc-speakers','sub-elec-audio','Speakers'),
		  ('ssc-smartphones','sub-elec-phones','Smartphones'),
		  ('ssc-phone-cases','sub-elec-phones','Cases'),
		  ('ssc-running','sub-foot-sneakers','Running'),
		  ('ssc-casual','sub-foot-sneakers','Casual'),
		  ('ssc-cookware','sub-home-kitchen','Cookware'),
		  ('ssc-lamps','sub-home-decor','Lamps')
		 ON CONFLICT(id) DO NOTHING`,
	}
	for _, s := range stmts {
		if _, err := tx.Exec(s); err != nil {
			return err
		}
	}
	return tx.Commit()
}

var (
	seedHashOnce sync.Once
	seedHash     string
	seedHashErr  error
)

func seedPasswordHash() (string, error) {
	seedHashOnce.Do(func() {
		h, err := bcrypt.GenerateFromPassword([]byte(SeedPassword), bcrypt.DefaultCost)
		seedHash, seedHashErr = string(h), err
	})
	return seedHash, seedHashErr
}

// seedUsers ensures one account per role/approval combination exists (idempotent).
func seedUsers(db *sqlx.DB) error {
	type u struct {
		ID, Email, Name, Role, Approved string
	}
	users := []u{
		{"u-admin", "admin@vendorhub.test", "Admin", "admin", "Accepted"},
		{"u-vendor", "vendor@vendorhub.test", "Vera Vendor", "vendor", "Accepted"},
		{"u-maya", "maya@vendorhub.test", "Maya Market", "vendor", "Accepted"},
		{"u-pending", "pending@vendorhub.test", "Pat Pending", "vendor", "Waiting"},
		{"u-rejected", "rejected@vendorhub.test", "Rex Rejected", "vendor", "Rejected"},
		{"u-shopper", "shopper@vendorhub.test", "Sam Shopper", "user", "Accepted"},
	}

	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM users WHERE user_id='u-admin'`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	hash, err := seedPasswordHash()
	if err != nil {
		return err
	}
	log.Println("[seed] inserting demo accounts")

	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, x := range users {
		if _, err := tx.Exec(`
			INSERT INTO users(user_id,name,email,phone,user_role,approved,signin_type,onboarding_step)
			VALUES(?,?,?,?,?,?,'email','Home')
			ON CONFLICT(user_id) DO NOTHING
		`, x.ID, x.Name, x.Email, "555-0100", x.Role, x.Approved); err != nil {
			return err
		}
		if _, err := tx.Exec(`
			INSERT INTO credentials(user_id,email,password_hash) VALUES(?,?,?)
			ON CONFLICT(user_id) DO NOTHING
		`, x.ID, x.Email, hash); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// seedProducts gives the demo vendors a few rows of each structure (idempotent).
func seedProducts(db *sqlx.DB) error {
	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmts := []string{
		`INSERT INTO products(product_id,approved,uploaded_by,structure,type,category_id,sub_category_id,sub_sub_category_id,discount,details,image)
		 VALUES
		  ('p-seed-tee',1,'u-vendor','structure_2','Men','cat-clothing','sub-clothing-tops','ssc-tshirts',
		   '[{"price":"499","weight":"M","discount_percentage":"10"}]',
		   '{"name":"Classic Tee","price":499,"discount":"no","description":"Cotton crew neck.","stock_quantity":12,"image_url":[{"url":"/static/placeholder.svg","color":"#FFFFFF"}]}',
		   '[{"url":"/static/placeholder.svg","color":"#FFFFFF"}]'),
		  ('p-seed-buds',0,'u-vendor','structure_1',NULL,'cat-electronics','sub-elec-audio','ssc-headphones',
		   NULL,
		   '{"name":"Wireless Earbuds","price":1999.5,"discount":"no","Disclaimer":"Battery life varies.","description":"Bluetooth 5.3 earbuds.","stock_quantity":3,"image_url":["/static/placeholder.svg"]}',
		   '["/static/placeholder.svg"]'),
		  ('p-seed-lamp',1,'u-maya','structure_1',NULL,'cat-home','sub-home-decor','ssc-lamps',
		   NULL,
		   '{"name":"Desk Lamp","price":899,"discount":"no","description":"Warm LED lamp.","stock_quantity":20,"image_url":["/static/placeholder.svg"]}',
		   '["/static/placeholder.svg"]')
		 ON CONFLICT(product_id) DO NOTHING`,
		`INSERT INTO liked_products(user_id,product_id) VALUES
		  ('u-shopper','p-seed-tee'),
		  ('u-shopper','p-seed-buds')
		 ON CONFLICT(user_id,product_id) DO NOTHING`,
		`INSERT INTO cart(user_id,product_id,quantity)
		 SELECT 'u-shopper','p-seed-tee',2
		 WHERE NOT EXISTS (SELECT 1 FROM cart WHERE user_id='u-shopper' AND product_id='p-seed-tee')`,
	}
	for _, s := range stmts {
		if _, err := tx.Exec(s); err != nil {
			return err
		}
	}
	return tx.Commit()
}
