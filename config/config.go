package config

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"

	homedir "github.com/mitchellh/go-homedir"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"
	"sigs.k8s.io/controller-runtime/pkg/certwatcher"
)

type Config struct {
	HTTPServer *HTTPServer   `yaml:"http-server,omitempty" json:"http-server,omitempty"`
	Prometheus *PromConfig   `yaml:"prometheus,omitempty" json:"prometheus,omitempty"`
	Defaults   *Defaults     `yaml:"defaults,omitempty" json:"defaults,omitempty"`
	Pools      []*PoolConfig `yaml:"pools,omitempty" json:"pools,omitempty"`
}

type TLS struct {
	CA         string `yaml:"ca,omitempty" json:"ca,omitempty"`
	Cert       string `yaml:"cert,omitempty" json:"cert,omitempty"`
	Key        string `yaml:"key,omitempty" json:"key,omitempty"`
	SkipVerify bool   `yaml:"skip-verify,omitempty" json:"skip-verify,omitempty"`
}

func New(file string) (*Config, error) {
	file, err := homedir.Expand(file)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	c := new(Config)
	err = yaml.Unmarshal(b, c)
	if err != nil {
		return nil, err
	}
	err = c.ValidateSetDefaults()
	return c, err
}

func (c *Config) ValidateSetDefaults() error {
	if c.HTTPServer == nil {
		return errors.New("http-server definition is required")
	}
	if c.HTTPServer.Address == "" {
		c.HTTPServer.Address = defaultAddress
	}
	if c.HTTPServer.MaxBodySize <= 0 {
		c.HTTPServer.MaxBodySize = defaultMaxBodySize
	}
	if c.Defaults == nil {
		c.Defaults = &Defaults{}
	}
	if c.Defaults.Workers <= 0 {
		c.Defaults.Workers = defaultWorkers
	}
	seen := make(map[string]struct{}, len(c.Pools))
	for _, pc := range c.Pools {
		if pc.Name == "" {
			return errors.New("pool definition is missing a name")
		}
		if _, ok := seen[pc.Name]; ok {
			return fmt.Errorf("duplicate pool definition %q", pc.Name)
		}
		seen[pc.Name] = struct{}{}
		if pc.Workers <= 0 {
			pc.Workers = c.Defaults.Workers
		}
	}
	return nil
}

type HTTPServer struct {
	Address     string `yaml:"address,omitempty" json:"address,omitempty"`
	TLS         *TLS   `yaml:"tls,omitempty" json:"tls,omitempty"`
	MaxBodySize int64  `yaml:"max-body-size,omitempty" json:"max-body-size,omitempty"`
}

type PromConfig struct {
	Address string `yaml:"address,omitempty" json:"address,omitempty"`
}

func (t *TLS) NewConfig(ctx context.Context) (*tls.Config, error) {
	tlsCfg := &tls.Config{InsecureSkipVerify: t.SkipVerify}
	if t.CA != "" {
		ca, err := os.ReadFile(t.CA)
		if err != nil {
			return nil, fmt.Errorf("failed to read client CA cert: %w", err)
		}
		if len(ca) != 0 {
			caCertPool := x509.NewCertPool()
			caCertPool.AppendCertsFromPEM(ca)
			tlsCfg.RootCAs = caCertPool
		}
	}

	if t.Cert != "" && t.Key != "" {
		certWatcher, err := certwatcher.New(t.Cert, t.Key)
		if err != nil {
			return nil, err
		}

		go func() {
			if err := certWatcher.Start(ctx); err != nil {
				log.Errorf("certificate watcher error: %v", err)
			}
		}()
		tlsCfg.GetCertificate = certWatcher.GetCertificate
	}
	return tlsCfg, nil
}
