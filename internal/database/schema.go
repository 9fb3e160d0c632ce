package database

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		user_id SERIAL PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		first_name TEXT NOT NULL DEFAULT '',
		last_name TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL DEFAULT 'user' CHECK (role IN ('user', 'assistant', 'admin')),
		avatar_url TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS locations (
		location_id SERIAL PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		province TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS assistants (
		user_id INT PRIMARY KEY REFERENCES users(user_id) ON DELETE CASCADE,
		bio TEXT NOT NULL DEFAULT '',
		skills TEXT[] NOT NULL DEFAULT '{}',
		hourly_rate NUMERIC NOT NULL DEFAULT 0 CHECK (hourly_rate >= 0),
		experience_years INT NOT NULL DEFAULT 0 CHECK (experience_years >= 0),
		location_id INT REFERENCES locations(location_id) ON DELETE SET NULL,
		available BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS requests (
		request_id SERIAL PRIMARY KEY,
		user_id INT NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
		location_id INT NOT NULL REFERENCES locations(location_id),
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		care_type TEXT NOT NULL,
		start_date TIMESTAMPTZ,
		hours INT NOT NULL CHECK (hours > 0),
		budget NUMERIC NOT NULL DEFAULT 0 CHECK (budget >= 0),
		status TEXT NOT NULL DEFAULT 'open' CHECK (status IN ('open', 'assigned', 'completed', 'cancelled')),
		assistant_id INT REFERENCES users(user_id) ON DELETE SET NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS requests_status_idx ON requests (status, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS applications (
		application_id SERIAL PRIMARY KEY,
		request_id INT NOT NULL REFERENCES requests(request_id) ON DELETE CASCADE,
		assistant_id INT NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
		message TEXT NOT NULL DEFAULT '',
		proposed_rate NUMERIC NOT NULL DEFAULT 0 CHECK (proposed_rate >= 0),
		status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'accepted', 'rejected', 'withdrawn')),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (request_id, assistant_id)
	)`,
	`CREATE TABLE IF NOT EXISTS ratings (
		rating_id SERIAL PRIMARY KEY,
		request_id INT NOT NULL UNIQUE REFERENCES requests(request_id) ON DELETE CASCADE,
		assistant_id INT NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
		user_id INT NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
		score INT NOT NULL CHECK (score BETWEEN 1 AND 5),
		comment TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS ratings_assistant_idx ON ratings (assistant_id)`,
}
