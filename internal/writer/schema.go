package writer

// Schema creates the results tables if they do not exist.
const Schema = `
CREATE TABLE IF NOT EXISTS reconcile_runs (
    run_id       UUID        PRIMARY KEY,
    instance_id  TEXT        NOT NULL,
    range_start  DATE        NOT NULL,
    range_end    DATE        NOT NULL,
    report_field TEXT        NOT NULL,
    assets       INTEGER     NOT NULL,
    mismatches   INTEGER     NOT NULL,
    failed       INTEGER     NOT NULL,
    started_at   TIMESTAMPTZ NOT NULL,
    finished_at  TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS bar_mismatches (
    run_id  UUID   NOT NULL REFERENCES reconcile_runs (run_id),
    sid     BIGINT NOT NULL,
    symbol  TEXT   NOT NULL,
    day     DATE   NOT NULL,
    value_a BIGINT NOT NULL,
    value_b BIGINT NOT NULL,
    PRIMARY KEY (run_id, sid, day)
);
`
