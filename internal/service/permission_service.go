package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/gravitational/trace"

	"docvault/internal/domain"
)

// PermissionService выдает, отзывает и проверяет права доступа.
// Права существуют только как явные записи на конкретный ресурс:
// наследования по дереву нет.
type PermissionService struct {
	permRepo   PermissionStore
	userRepo   UserStore
	folderRepo FolderStore
	fileRepo   FileStore
	tx         TxRunner
}

func NewPermissionService(
	permRepo PermissionStore,
	userRepo UserStore,
	folderRepo FolderStore,
	fileRepo FileStore,
	tx TxRunner,
) *PermissionService {
	return &PermissionService{
		permRepo:   permRepo,
		userRepo:   userRepo,
		folderRepo: folderRepo,
		fileRepo:   fileRepo,
		tx:         tx,
	}
}

// GrantRequest описывает выдачу права: ресурс задается ровно одним из
// идентификаторов FolderID / FileID.
type GrantRequest struct {
	UserID   uuid.UUID
	FolderID *uuid.UUID
	FileID   *uuid.UUID
	Type     domain.PermissionType
}

// Grant выдает право доступа. Выдавать может только менеджер, получать —
// только обычный пользователь его же города.
func (s *PermissionService) Grant(ctx context.Context, principal domain.Principal, req GrantRequest) (*domain.Permission, error) {
	if principal.Role != domain.RoleManager {
		return nil, trace.AccessDenied("only manager users can grant or revoke permissions")
	}

	var granted *domain.Permission
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		target, err := s.userRepo.Get(ctx, req.UserID)
		if err != nil {
			if trace.IsNotFound(err) {
				return trace.NotFound("target user not found")
			}
			return trace.Wrap(err)
		}
		if target.Role != domain.RoleBasic {
			return trace.BadParameter("permissions can only be granted to basic users")
		}
		if target.TownID != principal.TownID {
			return trace.AccessDenied("manager can only grant permissions to users within their own town")
		}

		if (req.FolderID == nil) == (req.FileID == nil) {
			return trace.BadParameter("either folder id or file id must be provided")
		}

		// Ресурс должен существовать, быть живым и принадлежать городу менеджера
		var resourceID uuid.UUID
		isFolder := req.FolderID != nil
		if isFolder {
			folder, err := s.folderRepo.GetLive(ctx, *req.FolderID, principal.TownID)
			if err != nil {
				if trace.IsNotFound(err) {
					return trace.NotFound("folder not found or does not belong to your town")
				}
				return trace.Wrap(err)
			}
			resourceID = folder.ID
		} else {
			file, err := s.fileRepo.GetLive(ctx, *req.FileID, principal.TownID)
			if err != nil {
				if trace.IsNotFound(err) {
					return trace.NotFound("file not found or does not belong to your town")
				}
				return trace.Wrap(err)
			}
			resourceID = file.ID
		}

		exists, err := s.permRepo.Exists(ctx, target.ID, resourceID, isFolder, req.Type)
		if err != nil {
			return trace.Wrap(err)
		}
		if exists {
			return trace.AlreadyExists("permission already exists for this user and resource")
		}

		permission, err := domain.NewPermission(target.ID, req.FolderID, req.FileID, req.Type, principal.UserID)
		if err != nil {
			return trace.Wrap(err)
		}

		if err := s.permRepo.Create(ctx, permission); err != nil {
			return trace.Wrap(err)
		}

		granted = permission
		return nil
	})
	if err != nil {
		return nil, trace.Wrap(err)
	}

	return granted, nil
}

// Revoke отзывает право. Отозвать может только тот менеджер, который его выдал.
func (s *PermissionService) Revoke(ctx context.Context, principal domain.Principal, permissionID uuid.UUID) error {
	if principal.Role != domain.RoleManager {
		return trace.AccessDenied("only manager users can grant or revoke permissions")
	}

	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		permission, err := s.permRepo.Get(ctx, permissionID)
		if err != nil {
			return trace.Wrap(err)
		}

		if permission.GrantedBy != principal.UserID {
			return trace.AccessDenied("you are not authorized to revoke this permission")
		}

		return trace.Wrap(s.permRepo.Delete(ctx, permissionID))
	})
}

// List возвращает права с учетом роли вызывающего: админ видит все, менеджер —
// выданные им самим или права конкретного обычного пользователя своего города,
// обычный пользователь — только свои.
func (s *PermissionService) List(ctx context.Context, principal domain.Principal, targetUserID *uuid.UUID) ([]domain.Permission, error) {
	switch principal.Role {
	case domain.RoleAdmin:
		if targetUserID != nil {
			return s.permRepo.ListByUser(ctx, *targetUserID)
		}
		return s.permRepo.ListAll(ctx)

	case domain.RoleManager:
		if targetUserID == nil {
			return s.permRepo.ListByGranter(ctx, principal.UserID)
		}

		target, err := s.userRepo.Get(ctx, *targetUserID)
		if err != nil {
			if trace.IsNotFound(err) {
				return nil, trace.NotFound("target user not found")
			}
			return nil, trace.Wrap(err)
		}
		if target.Role != domain.RoleBasic {
			return nil, trace.BadParameter("permissions can only be listed for basic users")
		}
		if target.TownID != principal.TownID {
			return nil, trace.AccessDenied("manager can only list permissions of users within their own town")
		}
		return s.permRepo.ListByUser(ctx, target.ID)

	default:
		if targetUserID != nil && *targetUserID != principal.UserID {
			return nil, trace.AccessDenied("basic users can only view their own permissions")
		}
		return s.permRepo.ListByUser(ctx, principal.UserID)
	}
}

// Check отвечает, разрешена ли операция над конкретным ресурсом. Роли admin и
// manager дают полный доступ без обращения к хранилищу; для обычного
// пользователя нужна запись с точным совпадением (пользователь, ресурс, тип).
// Подъема по предкам нет: право на папку не распространяется на вложенное.
func (s *PermissionService) Check(ctx context.Context, principal domain.Principal, resourceID uuid.UUID, isFolder bool, permType domain.PermissionType) (bool, error) {
	if principal.Role == domain.RoleAdmin || principal.Role == domain.RoleManager {
		return true, nil
	}

	ok, err := s.permRepo.Exists(ctx, principal.UserID, resourceID, isFolder, permType)
	if err != nil {
		return false, trace.Wrap(err)
	}

	return ok, nil
}
