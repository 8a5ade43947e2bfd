package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			CREATE TABLE runs (
				request_id VARCHAR(255) PRIMARY KEY,
				status VARCHAR(50) NOT NULL,
				current_step VARCHAR(100),
				document JSONB NOT NULL,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_runs_status ON runs(status);
			CREATE INDEX idx_runs_created_at ON runs(created_at);
		`,
		2: `
			-- Step states are denormalized for querying retry counts across runs
			CREATE TABLE run_steps (
				request_id VARCHAR(255) NOT NULL REFERENCES runs(request_id) ON DELETE CASCADE,
				step VARCHAR(100) NOT NULL,
				agent VARCHAR(255),
				status VARCHAR(50) NOT NULL,
				retry_count INT NOT NULL DEFAULT 0,
				reason TEXT,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL,
				PRIMARY KEY (request_id, step)
			);

			CREATE INDEX idx_run_steps_status ON run_steps(status);
		`,
	}
}
