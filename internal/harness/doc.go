// Package harness runs frame conformance scenarios.
//
// A scenario is a YAML file that seeds a fresh in-memory SQLite database,
// invokes frames through the engine and asserts on the outcome:
//
//	name: company_rating_toggle
//	description: "COMPANY maintenance flips the S&P rating and back"
//	setup:
//	  - INSERT INTO company (co_id, co_name, co_in_id, co_sp_rate) VALUES (1, 'Acme', 'SW', 'AAA')
//	flow:
//	  - frame: DataMaintenanceFrame1
//	    args: {account_id: 0, customer_id: 0, company_id: 1, day_of_month: 1,
//	           symbol: "", target_table: COMPANY, tax_id: "", volume_increment: 0}
//	    expect:
//	      outcome: ok
//	      output: {status: 0}
//	assertions:
//	  - type: final_state
//	    table: company
//	    where: {co_id: 1}
//	    expect: {co_sp_rate: ABA}
//
// Each flow step runs in its own transaction, committed when the frame
// succeeds and rolled back when it fails. The clock and invocation ids are
// deterministic, so the recorded trace can be compared against a golden
// file (see RunWithGolden).
package harness
