package repository

// Schema creates the tables the Postgres record store reads from.
const Schema = `
CREATE TABLE IF NOT EXISTS products (
	product_id   TEXT PRIMARY KEY,
	product_name TEXT NOT NULL DEFAULT '',
	category     TEXT NOT NULL DEFAULT '',
	supplier     TEXT NOT NULL DEFAULT '',
	cost_price   DOUBLE PRECISION NOT NULL DEFAULT 0,
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS sales_records (
	date          DATE NOT NULL,
	product_id    TEXT NOT NULL,
	quantity_sold DOUBLE PRECISION NOT NULL DEFAULT 0,
	revenue       DOUBLE PRECISION NOT NULL DEFAULT 0,
	PRIMARY KEY (date, product_id)
);

CREATE TABLE IF NOT EXISTS inventory_snapshots (
	date          DATE NOT NULL,
	product_id    TEXT NOT NULL,
	current_stock DOUBLE PRECISION NOT NULL DEFAULT 0,
	PRIMARY KEY (date, product_id)
);
`
