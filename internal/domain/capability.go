package domain

// TestResult is the answer of the tester capability for one artifact.
type TestResult struct {
	Success     bool     `json:"success"`
	Diagnostics []string `json:"diagnostics,omitempty"`
}

// DeployResult is the answer of the deployer capability.
type DeployResult struct {
	Success     bool     `json:"success"`
	Diagnostics []string `json:"diagnostics,omitempty"`
}
