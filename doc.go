// Package stockfolio provides the types and functions to track stock
// holdings inside named portfolios and to answer, as of any query date,
// what is held, how much was invested, and what it is worth.
//
// The core functionalities include:
//   - Ledger Management: an append-only, chronological record of buy and
//     sell transactions per stock, replayed in full on every mutation so
//     that no historical position can ever go negative.
//   - Valuation: date-parameterized cost-basis and market-value
//     computations, pure functions of the ledger contents, the query date
//     and a price source.
//   - Dollar-Cost Investing: percentage-weighted recurring purchase plans,
//     expanded lazily into materialized (past) and pending (future)
//     occurrences without ever storing derived transactions.
//   - Data Persistence: an in-memory portfolio repository with CSV
//     import/export that re-derives and re-validates the whole ledger from
//     untrusted text.
//
// Prices, listing dates and stock identities come from a PriceOracle, a
// narrow lookup contract implemented by the alphavantage package.
//
// This package serves as the foundational logic for the `sfl` command-line
// tool.
package stockfolio
