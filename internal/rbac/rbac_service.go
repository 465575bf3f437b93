package rbac

import (
	"sort"
	"sync"

	"go-eduhr/internal/domain"

	"github.com/casbin/casbin/v2"
	"go.uber.org/zap"
)

//go:generate mockgen -source=rbac_service.go -destination=mock/rbac_service_mock.go -package=mock
type Service interface {
	Enforce(req domain.EnforceRequest) (bool, error)
	Policies() ([]domain.PolicyRule, error)
}

type service struct {
	enforcer *casbin.Enforcer
	mu       sync.RWMutex
	logger   *zap.Logger
}

// NewService loads DefaultPermissions into the enforcer.
func NewService(enforcer *casbin.Enforcer, logger ...*zap.Logger) (Service, error) {
	l := zap.L().Named("rbac.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("rbac.service")
	}

	enforcer.ClearPolicy()
	if _, err := enforcer.AddPolicies(policyRows(DefaultPermissions)); err != nil {
		return nil, err
	}
	l.Info("rbac policy loaded", zap.Int("rules", len(policyRows(DefaultPermissions))))

	return &service{enforcer: enforcer, logger: l}, nil
}

func (s *service) Enforce(req domain.EnforceRequest) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	allowed, err := s.enforcer.Enforce(req.Role, req.Resource, req.Action)
	if err != nil {
		s.logger.Error("rbac enforce failed",
			zap.String("role", req.Role),
			zap.String("resource", req.Resource),
			zap.String("action", req.Action),
			zap.Error(err),
		)
		return false, err
	}

	s.logger.Debug("rbac enforce result",
		zap.String("role", req.Role),
		zap.String("resource", req.Resource),
		zap.String("action", req.Action),
		zap.Bool("allowed", allowed),
	)
	return allowed, nil
}

func (s *service) Policies() ([]domain.PolicyRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.enforcer.GetPolicy()
	if err != nil {
		return nil, err
	}

	rules := make([]domain.PolicyRule, 0, len(rows))
	for _, row := range rows {
		if len(row) < 3 {
			continue
		}
		rules = append(rules, domain.PolicyRule{Role: row[0], Resource: row[1], Action: row[2]})
	}

	sort.Slice(rules, func(i, j int) bool {
		if rules[i].Resource != rules[j].Resource {
			return rules[i].Resource < rules[j].Resource
		}
		if rules[i].Action != rules[j].Action {
			return rules[i].Action < rules[j].Action
		}
		return rules[i].Role < rules[j].Role
	})
	return rules, nil
}
