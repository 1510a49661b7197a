package main

const (
	// defaultDockerfilePath is checked when the check command gets no
	// file argument.
	defaultDockerfilePath = "Dockerfile"
	// defaultComposePath is checked when the compose command gets no
	// file argument.
	defaultComposePath = "docker-compose.yml"

	// Config file handling.
	envPrefix       = "UPTAG"
	configName      = ".uptag"
	localConfigFile = ".uptag.yaml"

	// Supported --output-format values.
	outputFormatText = "text"
	outputFormatJSON = "json"
	outputFormatYAML = "yaml"
)
