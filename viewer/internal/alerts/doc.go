// Package alerts evaluates threshold rules against every received benchmark
// report and delivers webhook notifications to Slack, Teams, or generic HTTP
// targets when a rule fires or resolves.
package alerts
