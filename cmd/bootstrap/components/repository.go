package components

import (
	repo_impl "stewardflow/internal/infra/repository"
	"stewardflow/internal/usecase"

	"go.uber.org/fx"
)

var RepositoryModule = fx.Module("repository",
	fx.Provide(
		fx.Annotate(
			repo_impl.NewReservationRepository,
			fx.As(new(usecase.ReservationRepository)),
		),
		fx.Annotate(
			repo_impl.NewResourceRepository,
			fx.As(new(usecase.ResourceRepository)),
		),
		fx.Annotate(
			repo_impl.NewProfileRepository,
			fx.As(new(usecase.ProfileRepository)),
		),
		fx.Annotate(
			repo_impl.NewApprovalPolicyRepository,
			fx.As(new(usecase.ApprovalPolicyRepository)),
		),
		fx.Annotate(
			repo_impl.NewOrgSettingsRepository,
			fx.As(new(usecase.OrgSettingsRepository)),
		),
		fx.Annotate(
			repo_impl.NewNotificationRepository,
			fx.As(new(usecase.NotificationRepository)),
		),
		fx.Annotate(
			repo_impl.NewAuditRepository,
			fx.As(new(usecase.AuditRepository)),
		),
	),
)
