package mocks

//go:generate mockgen -destination=./mock_evaluator.go -package=mocks github.com/rxtech-lab/argo-forge/internal/node Evaluator
//go:generate mockgen -destination=./mock_provider.go -package=mocks github.com/rxtech-lab/argo-forge/pkg/marketdata/provider Provider
