package testutil

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/systmms/envexplorer/pkg/paramstore"
)

const localStackPort = 4566

// LocalStack manages a LocalStack container started through Docker Compose
type LocalStack struct {
	t           *testing.T
	composePath string
	projectName string
	started     bool
	hostPort    int
}

// StartLocalStack brings up the localstack service from
// tests/integration/docker-compose.yml and waits for it to be healthy. The
// container is removed when the test ends. Tests are skipped when Docker is
// unavailable.
func StartLocalStack(t *testing.T) *LocalStack {
	t.Helper()

	SkipIfDockerUnavailable(t)
	IsolateAWSEnv(t)

	composePath := findDockerComposePath()
	if composePath == "" {
		t.Fatal("docker-compose.yml not found in tests/integration/")
	}

	ls := &LocalStack{
		t:           t,
		composePath: composePath,
		// UnixNano keeps parallel runs from sharing a project
		projectName: fmt.Sprintf("envexplorer-test-%d", time.Now().UnixNano()),
	}

	ls.compose("up", "-d", "localstack")
	ls.started = true
	t.Cleanup(ls.Stop)

	if err := ls.WaitForHealthy(90 * time.Second); err != nil {
		t.Fatalf("LocalStack failed to become healthy: %v", err)
	}
	if err := ls.discoverPort(); err != nil {
		t.Fatalf("Failed to discover LocalStack port: %v", err)
	}
	return ls
}

// SkipIfDockerUnavailable skips the test if Docker is not available
func SkipIfDockerUnavailable(t *testing.T) {
	t.Helper()

	if !IsDockerAvailable() {
		t.Skip("Docker not available, skipping integration test")
	}
}

// IsDockerAvailable checks that the docker CLI, its daemon and compose v2 work
func IsDockerAvailable() bool {
	if _, err := exec.LookPath("docker"); err != nil {
		return false
	}
	if err := exec.Command("docker", "ps").Run(); err != nil {
		return false
	}
	return exec.Command("docker", "compose", "version").Run() == nil
}

func (l *LocalStack) compose(args ...string) {
	l.t.Helper()

	full := append([]string{"compose", "-f", l.composePath, "-p", l.projectName}, args...)
	cmd := exec.Command("docker", full...)
	cmd.Dir = filepath.Dir(l.composePath)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		l.t.Fatalf("docker %s: %v", strings.Join(full, " "), err)
	}
}

// Stop removes the container and its volumes
func (l *LocalStack) Stop() {
	if !l.started {
		return
	}
	cmd := exec.Command("docker", "compose", "-f", l.composePath, "-p", l.projectName, "down", "-v")
	cmd.Dir = filepath.Dir(l.composePath)
	if err := cmd.Run(); err != nil {
		l.t.Logf("Warning: Failed to stop LocalStack: %v", err)
	}
	l.started = false
}

// WaitForHealthy polls the container health status until it reports healthy
func (l *LocalStack) WaitForHealthy(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	// Compose names containers {project}-{service}-{replica}
	container := fmt.Sprintf("%s-localstack-1", l.projectName)
	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for %s", container)
		case <-ticker.C:
			out, err := exec.Command("docker", "inspect", "--format", "{{.State.Health.Status}}", container).Output()
			if err == nil && strings.TrimSpace(string(out)) == "healthy" {
				return nil
			}
		}
	}
}

func (l *LocalStack) discoverPort() error {
	cmd := exec.Command("docker", "compose", "-f", l.composePath, "-p", l.projectName,
		"port", "localstack", fmt.Sprintf("%d", localStackPort))
	cmd.Dir = filepath.Dir(l.composePath)

	out, err := cmd.Output()
	if err != nil {
		return err
	}

	// "0.0.0.0:32768" -> 32768
	mapping := strings.TrimSpace(string(out))
	idx := strings.LastIndex(mapping, ":")
	if idx < 0 {
		return fmt.Errorf("unexpected port output format: %s", mapping)
	}
	if _, err := fmt.Sscanf(mapping[idx+1:], "%d", &l.hostPort); err != nil {
		return fmt.Errorf("failed to parse host port from %s: %w", mapping, err)
	}
	l.t.Logf("Discovered port mapping: localstack:%d -> localhost:%d", localStackPort, l.hostPort)
	return nil
}

// Endpoint is the LocalStack edge URL on the host
func (l *LocalStack) Endpoint() string {
	return fmt.Sprintf("http://127.0.0.1:%d", l.hostPort)
}

// AWSConfig returns an SDK config with the dummy credentials LocalStack accepts
func (l *LocalStack) AWSConfig() aws.Config {
	l.t.Helper()

	cfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion("us-east-1"),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("test", "test", "")),
	)
	if err != nil {
		l.t.Fatalf("Failed to load AWS config: %v", err)
	}
	return cfg
}

// SSM returns a raw SSM client pointed at LocalStack
func (l *LocalStack) SSM() *ssm.Client {
	endpoint := l.Endpoint()
	return ssm.NewFromConfig(l.AWSConfig(), func(o *ssm.Options) {
		o.BaseEndpoint = &endpoint
	})
}

// Seed writes params into LocalStack's parameter store
func (l *LocalStack) Seed(params ...paramstore.Parameter) {
	l.t.Helper()

	client := l.SSM()
	for _, p := range params {
		_, err := client.PutParameter(context.Background(), &ssm.PutParameterInput{
			Name:      aws.String(p.Name),
			Value:     aws.String(p.Value),
			Type:      ssmTypeOf(p.Type),
			Overwrite: aws.Bool(true),
		})
		if err != nil {
			l.t.Fatalf("Failed to seed %s: %v", p.Name, err)
		}
	}
}

func ssmTypeOf(t paramstore.Type) ssmtypes.ParameterType {
	if t == "" {
		t = paramstore.TypeString
	}
	return ssmtypes.ParameterType(t)
}

// findDockerComposePath walks up to the module root looking for the
// integration compose file
func findDockerComposePath() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		candidate := filepath.Join(dir, "tests", "integration", "docker-compose.yml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return ""
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
