package components

import (
	"stewardflow/internal/pkg/clock"
	"stewardflow/internal/usecase"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	fx.Provide(
		clock.NewRealClock,
		usecase.NewReservationUseCase,
		usecase.NewLifecycleUseCase,
		usecase.NewVehicleReturnUseCase,
		usecase.NewApprovalUseCase,
	),
)
