package service

import (
	"sort"
	"sync"
	"testing"
	"time"

	ierr "github.com/coachdesk/coachdesk/internal/errors"
	"github.com/coachdesk/coachdesk/internal/testutil"
	"github.com/coachdesk/coachdesk/internal/types"
	"github.com/stretchr/testify/suite"
)

type SequenceServiceSuite struct {
	testutil.BaseServiceTestSuite
	service SequenceService
	params  ServiceParams
}

func TestSequenceService(t *testing.T) {
	suite.Run(t, new(SequenceServiceSuite))
}

func (s *SequenceServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	stores := s.GetStores()
	s.params = ServiceParams{
		Logger:           s.GetLogger(),
		Config:           s.GetConfig(),
		DB:               s.GetDB(),
		TenantRepo:       stores.TenantRepo,
		PayerRepo:        stores.PayerRepo,
		InvoiceRepo:      stores.InvoiceRepo,
		SequenceRepo:     stores.SequenceRepo,
		CommissionRepo:   stores.CommissionRepo,
		SubscriptionRepo: stores.SubscriptionRepo,
		UsageSource:      stores.UsageSource,
	}
	s.service = NewSequenceService(s.params)
}

func (s *SequenceServiceSuite) TestAllocateSequential() {
	period := types.NewPeriodKey(2025, time.April)
	for want := int64(1); want <= 5; want++ {
		got, err := s.service.Allocate(s.GetContext(), "tenant-1", period)
		s.NoError(err)
		s.Equal(want, got)
	}
}

func (s *SequenceServiceSuite) TestCurrentTracksAllocations() {
	period := types.NewPeriodKey(2025, time.April)
	repo := s.GetStores().SequenceRepo

	// A counter that was never advanced reads as zero.
	current, err := repo.Current(s.GetContext(), "tenant-1", period)
	s.NoError(err)
	s.Equal(int64(0), current)

	for i := 0; i < 3; i++ {
		_, err := s.service.Allocate(s.GetContext(), "tenant-1", period)
		s.NoError(err)
	}

	current, err = repo.Current(s.GetContext(), "tenant-1", period)
	s.NoError(err)
	s.Equal(int64(3), current)

	// Reading never advances the counter.
	next, err := s.service.Allocate(s.GetContext(), "tenant-1", period)
	s.NoError(err)
	s.Equal(int64(4), next)
}

func (s *SequenceServiceSuite) TestAllocateIsolation() {
	april := types.NewPeriodKey(2025, time.April)
	may := types.NewPeriodKey(2025, time.May)

	first, err := s.service.Allocate(s.GetContext(), "tenant-1", april)
	s.NoError(err)
	s.Equal(int64(1), first)

	// A different tenant and a different period both start over at 1.
	got, err := s.service.Allocate(s.GetContext(), "tenant-2", april)
	s.NoError(err)
	s.Equal(int64(1), got)

	got, err = s.service.Allocate(s.GetContext(), "tenant-1", may)
	s.NoError(err)
	s.Equal(int64(1), got)

	got, err = s.service.Allocate(s.GetContext(), "tenant-1", april)
	s.NoError(err)
	s.Equal(int64(2), got)
}

func (s *SequenceServiceSuite) TestAllocateConcurrent() {
	const n = 50
	period := types.NewPeriodKey(2025, time.June)

	results := make(chan int64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			seq, err := s.service.Allocate(s.GetContext(), "tenant-1", period)
			s.NoError(err)
			results <- seq
		}()
	}
	wg.Wait()
	close(results)

	// No duplicates and no gaps: the n allocations are exactly 1..n.
	got := make([]int64, 0, n)
	for seq := range results {
		got = append(got, seq)
	}
	sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })
	s.Len(got, n)
	for i, seq := range got {
		s.Equal(int64(i+1), seq)
	}
}

func (s *SequenceServiceSuite) TestNextInvoiceNumberFormat() {
	period := types.NewPeriodKey(2025, time.April)

	number, err := s.service.NextInvoiceNumber(s.GetContext(), "tenant-1", period)
	s.NoError(err)
	s.Equal("INV-202504-0001", number)

	number, err = s.service.NextInvoiceNumber(s.GetContext(), "tenant-1", period)
	s.NoError(err)
	s.Equal("INV-202504-0002", number)
}

func (s *SequenceServiceSuite) TestAllocateRejectsInvalidPeriod() {
	_, err := s.service.Allocate(s.GetContext(), "tenant-1", types.PeriodKey("2025-04"))
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *SequenceServiceSuite) TestAllocateExhaustsConfiguredWidth() {
	cfg := *s.GetConfig()
	cfg.Billing.SequencePadWidth = 1
	params := s.params
	params.Config = &cfg
	svc := NewSequenceService(params)

	period := types.NewPeriodKey(2025, time.April)
	for i := 0; i < 9; i++ {
		_, err := svc.Allocate(s.GetContext(), "tenant-1", period)
		s.NoError(err)
	}

	_, err := svc.Allocate(s.GetContext(), "tenant-1", period)
	s.Error(err)
	s.True(ierr.IsSequenceExhausted(err))
}
