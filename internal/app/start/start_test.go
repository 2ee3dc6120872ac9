package start_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/slok/taskmon/internal/app/start"
	"github.com/slok/taskmon/internal/clock/fake"
	"github.com/slok/taskmon/internal/model"
	"github.com/slok/taskmon/internal/monitor"
	"github.com/slok/taskmon/internal/storage/memory"
	"github.com/slok/taskmon/internal/task"
	"github.com/slok/taskmon/internal/task/local"
	"github.com/slok/taskmon/internal/task/taskmock"
)

func TestNewService(t *testing.T) {
	tests := map[string]struct {
		config start.ServiceConfig
		expErr bool
	}{
		"valid config should create service": {
			config: start.ServiceConfig{Monitors: monitor.EngineFactory{Service: &taskmock.MockService{}}},
		},
		"missing task service should fail": {
			config: start.ServiceConfig{},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)

			svc, err := start.NewService(test.config)

			if test.expErr {
				require.Error(err)
				require.Nil(svc)
			} else {
				require.NoError(err)
				require.NotNil(svc)
			}
		})
	}
}

func TestServiceRun(t *testing.T) {
	tests := map[string]struct {
		prepare   func(t *testing.T, svc *local.Service) string
		expErr    error
		expStatus model.TaskStatus
	}{
		"starting a pending task should run it": {
			prepare: func(t *testing.T, svc *local.Service) string {
				id, err := svc.CreateTask(context.TODO(), task.CreateRequest{Name: "test", TotalUnits: 5})
				require.NoError(t, err)
				return id
			},
			expStatus: model.TaskStatusRunning,
		},

		"starting a running task should not be allowed": {
			prepare: func(t *testing.T, svc *local.Service) string {
				id, err := svc.CreateTask(context.TODO(), task.CreateRequest{Name: "test", TotalUnits: 5})
				require.NoError(t, err)
				require.NoError(t, svc.StartTask(context.TODO(), id))
				return id
			},
			expErr: monitor.ErrNotAllowed,
		},

		"starting a missing task should fail": {
			prepare: func(t *testing.T, svc *local.Service) string { return "missing" },
			expErr:  model.ErrNotFound,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			clk := fake.NewClock(time.Date(2026, 1, 30, 10, 0, 0, 0, time.UTC))
			repo, err := memory.NewRepository(memory.RepositoryConfig{})
			require.NoError(err)
			taskSvc, err := local.NewService(local.ServiceConfig{Repository: repo, Clock: clk})
			require.NoError(err)
			id := test.prepare(t, taskSvc)

			svc, err := start.NewService(start.ServiceConfig{
				Monitors: monitor.EngineFactory{Service: taskSvc, Clock: clk},
			})
			require.NoError(err)

			view, err := svc.Run(context.TODO(), start.Request{TaskID: id})

			if test.expErr != nil {
				assert.ErrorIs(err, test.expErr)
				return
			}
			require.NoError(err)
			assert.Equal(test.expStatus, view.Snapshot().Status)
			assert.Equal(0, clk.PendingTimers(), "the monitor should be disposed")
		})
	}
}

func TestServiceRunServiceError(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	mSvc := &taskmock.MockService{}
	mSvc.On("FetchSnapshot", mock.Anything, "t1").Once().Return(&model.TaskSnapshot{ID: "t1", Status: model.TaskStatusPending}, nil)
	mSvc.On("StartTask", mock.Anything, "t1").Once().Return(model.ErrInvalidState)

	svc, err := start.NewService(start.ServiceConfig{Monitors: monitor.EngineFactory{Service: mSvc}})
	require.NoError(err)

	_, err = svc.Run(context.TODO(), start.Request{TaskID: "t1"})
	assert.ErrorIs(err, model.ErrInvalidState)
	mSvc.AssertExpectations(t)
}
