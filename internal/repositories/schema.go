package repository

import (
	"database/sql"
	"fmt"
)

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		email VARCHAR(255) UNIQUE NOT NULL,
		name VARCHAR(255) NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS mechanics (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		email VARCHAR(255) UNIQUE NOT NULL,
		name VARCHAR(255) NOT NULL,
		availability VARCHAR(20) NOT NULL DEFAULT 'available', -- available, busy
		created_at TIMESTAMP NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS parts (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		name VARCHAR(200) NOT NULL,
		sku VARCHAR(50) UNIQUE NOT NULL,
		price BIGINT NOT NULL, -- minor units
		stock_quantity INTEGER NOT NULL DEFAULT 0 CHECK (stock_quantity >= 0),
		min_stock_level INTEGER NOT NULL DEFAULT 0,
		status VARCHAR(20) NOT NULL DEFAULT 'active', -- active, inactive, discontinued
		created_at TIMESTAMP NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS cart_items (
		user_id UUID NOT NULL REFERENCES users(id),
		part_id UUID NOT NULL REFERENCES parts(id),
		quantity INTEGER NOT NULL CHECK (quantity > 0),
		created_at TIMESTAMP NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMP NOT NULL DEFAULT NOW(),
		PRIMARY KEY (user_id, part_id)
	);

	CREATE TABLE IF NOT EXISTS orders (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id UUID NOT NULL REFERENCES users(id),
		payment_intent_id VARCHAR(255) UNIQUE NOT NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'completed',
		total_amount BIGINT NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS order_items (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		order_id UUID NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		part_id UUID NOT NULL REFERENCES parts(id),
		part_name VARCHAR(200) NOT NULL,
		sku VARCHAR(50) NOT NULL,
		quantity INTEGER NOT NULL CHECK (quantity > 0),
		unit_price BIGINT NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS service_requests (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		request_number VARCHAR(40) UNIQUE NOT NULL,
		user_id UUID NOT NULL REFERENCES users(id),
		mechanic_id UUID REFERENCES mechanics(id),
		description TEXT NOT NULL,
		status VARCHAR(30) NOT NULL DEFAULT 'pending',
		payment_status VARCHAR(20) NOT NULL DEFAULT 'pending',
		payment_intent_id VARCHAR(255) UNIQUE,
		labor_cost BIGINT NOT NULL DEFAULT 0,
		parts_cost BIGINT NOT NULL DEFAULT 0,
		total_cost BIGINT NOT NULL DEFAULT 0,
		rejection_reason VARCHAR(500),
		accepted_at TIMESTAMP,
		started_at TIMESTAMP,
		completed_at TIMESTAMP,
		paid_at TIMESTAMP,
		created_at TIMESTAMP NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS service_request_parts (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		service_request_id UUID NOT NULL REFERENCES service_requests(id) ON DELETE CASCADE,
		part_id UUID NOT NULL REFERENCES parts(id),
		part_name VARCHAR(200) NOT NULL,
		quantity INTEGER NOT NULL CHECK (quantity > 0),
		unit_price BIGINT NOT NULL,
		subtotal BIGINT NOT NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'recommended', -- recommended, confirmed, installed
		created_at TIMESTAMP NOT NULL DEFAULT NOW(),
		UNIQUE (service_request_id, part_id)
	);

	CREATE TABLE IF NOT EXISTS quotations (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		quotation_number VARCHAR(40) UNIQUE NOT NULL,
		service_request_id UUID NOT NULL REFERENCES service_requests(id),
		labor_cost BIGINT NOT NULL DEFAULT 0,
		parts_cost BIGINT NOT NULL DEFAULT 0,
		total_amount BIGINT NOT NULL DEFAULT 0,
		status VARCHAR(20) NOT NULL DEFAULT 'draft',
		valid_from TIMESTAMP NOT NULL DEFAULT NOW(),
		valid_until TIMESTAMP NOT NULL,
		sent_at TIMESTAMP,
		created_at TIMESTAMP NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS notifications (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		kind VARCHAR(40) NOT NULL,
		recipient VARCHAR(255) NOT NULL,
		subject VARCHAR(255) NOT NULL,
		payload JSONB,
		status VARCHAR(20) NOT NULL DEFAULT 'pending',
		error_message TEXT,
		created_at TIMESTAMP NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_service_requests_user_id ON service_requests(user_id);
	CREATE INDEX IF NOT EXISTS idx_service_requests_mechanic_id ON service_requests(mechanic_id);
	CREATE INDEX IF NOT EXISTS idx_quotations_service_request_id ON quotations(service_request_id);
	CREATE INDEX IF NOT EXISTS idx_orders_user_id ON orders(user_id);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	return nil
}
