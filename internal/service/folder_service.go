package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/gravitational/trace"

	"docvault/internal/domain"
)

// FolderService отвечает за дерево папок: создание, переименование,
// перемещение и выборки содержимого. Корзиной занимается TrashService.
type FolderService struct {
	folderRepo FolderStore
	fileRepo   FileStore
	permSvc    *PermissionService
	tx         TxRunner
}

func NewFolderService(
	folderRepo FolderStore,
	fileRepo FileStore,
	permSvc *PermissionService,
	tx TxRunner,
) *FolderService {
	return &FolderService{
		folderRepo: folderRepo,
		fileRepo:   fileRepo,
		permSvc:    permSvc,
		tx:         tx,
	}
}

// Create создает папку. Администраторы папок не создают, обычные пользователи
// не могут создавать корневые; имя должно быть уникально среди живых соседей.
func (s *FolderService) Create(ctx context.Context, principal domain.Principal, name string, parentID *uuid.UUID) (*domain.Folder, error) {
	if principal.Role == domain.RoleAdmin {
		return nil, trace.AccessDenied("admins cannot create folders")
	}

	var created *domain.Folder
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if parentID != nil {
			if _, err := s.folderRepo.GetLive(ctx, *parentID, principal.TownID); err != nil {
				if trace.IsNotFound(err) {
					return trace.NotFound("parent folder not found")
				}
				return trace.Wrap(err)
			}

			ok, err := s.permSvc.Check(ctx, principal, *parentID, true, domain.PermissionWrite)
			if err != nil {
				return trace.Wrap(err)
			}
			if !ok {
				return trace.AccessDenied("you do not have write permission for the parent folder")
			}
		} else if principal.Role == domain.RoleBasic {
			return trace.AccessDenied("basic users cannot create root folders")
		}

		exists, err := s.folderRepo.ExistsByNameAndParent(ctx, principal.TownID, parentID, name)
		if err != nil {
			return trace.Wrap(err)
		}
		if exists {
			return trace.AlreadyExists("folder already exists")
		}

		userID := principal.UserID
		folder := &domain.Folder{
			ID:        uuid.New(),
			Name:      name,
			ParentID:  parentID,
			TownID:    principal.TownID,
			CreatedBy: &userID,
		}

		if err := s.folderRepo.Create(ctx, folder); err != nil {
			return trace.Wrap(err)
		}

		created = folder
		return nil
	})
	if err != nil {
		return nil, trace.Wrap(err)
	}

	return created, nil
}

// UpdateParams — изменяемые поля папки; nil означает "не трогать"
type UpdateParams struct {
	Name     *string
	Favorite *bool
}

// Update переименовывает папку или меняет флаг избранного
func (s *FolderService) Update(ctx context.Context, principal domain.Principal, folderID uuid.UUID, params UpdateParams) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		folder, err := s.folderRepo.GetLive(ctx, folderID, principal.TownID)
		if err != nil {
			return trace.Wrap(err)
		}

		ok, err := s.permSvc.Check(ctx, principal, folderID, true, domain.PermissionWrite)
		if err != nil {
			return trace.Wrap(err)
		}
		if !ok {
			return trace.AccessDenied("you do not have write permission for this folder")
		}

		if params.Name != nil && *params.Name != folder.Name {
			exists, err := s.folderRepo.ExistsByNameAndParent(ctx, principal.TownID, folder.ParentID, *params.Name)
			if err != nil {
				return trace.Wrap(err)
			}
			if exists {
				return trace.AlreadyExists("folder already exists")
			}
			folder.Name = *params.Name
		}
		if params.Favorite != nil {
			folder.Favorite = *params.Favorite
		}

		userID := principal.UserID
		folder.UpdatedBy = &userID

		return trace.Wrap(s.folderRepo.Update(ctx, folder))
	})
}

// ToggleFavorite переключает флаг избранного
func (s *FolderService) ToggleFavorite(ctx context.Context, principal domain.Principal, folderID uuid.UUID) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		folder, err := s.folderRepo.GetLive(ctx, folderID, principal.TownID)
		if err != nil {
			return trace.Wrap(err)
		}

		ok, err := s.permSvc.Check(ctx, principal, folderID, true, domain.PermissionWrite)
		if err != nil {
			return trace.Wrap(err)
		}
		if !ok {
			return trace.AccessDenied("you do not have write permission for this folder")
		}

		userID := principal.UserID
		folder.Favorite = !folder.Favorite
		folder.UpdatedBy = &userID

		return trace.Wrap(s.folderRepo.Update(ctx, folder))
	})
}

// Move перемещает папку под нового родителя. Порядок проверок фиксирован:
// папка не может стать собственным родителем, города должны совпадать,
// обе стороны должны быть живыми, и нельзя переместить папку внутрь
// собственного поддерева.
func (s *FolderService) Move(ctx context.Context, principal domain.Principal, folderID, targetID uuid.UUID) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		folder, err := s.folderRepo.GetLive(ctx, folderID, principal.TownID)
		if err != nil {
			return trace.Wrap(err)
		}

		target, err := s.folderRepo.Get(ctx, targetID)
		if err != nil {
			if trace.IsNotFound(err) {
				return trace.NotFound("target folder not found")
			}
			return trace.Wrap(err)
		}

		ok, err := s.permSvc.Check(ctx, principal, folderID, true, domain.PermissionWrite)
		if err != nil {
			return trace.Wrap(err)
		}
		if !ok {
			return trace.AccessDenied("you do not have write permission for the source folder")
		}

		ok, err = s.permSvc.Check(ctx, principal, targetID, true, domain.PermissionWrite)
		if err != nil {
			return trace.Wrap(err)
		}
		if !ok {
			return trace.AccessDenied("you do not have write permission for the target folder")
		}

		if folder.ID == target.ID {
			return trace.BadParameter("folder cannot be its own parent")
		}

		if folder.TownID != target.TownID {
			return trace.AccessDenied("different towns")
		}

		if folder.IsDeleted() || target.IsDeleted() {
			return trace.BadParameter("cannot move deleted folders")
		}

		// Цепочка родителей проверяется по всем папкам города, включая
		// корзину: путь от цели вверх может проходить через удаленную папку.
		all, err := s.folderRepo.ListByTown(ctx, principal.TownID)
		if err != nil {
			return trace.Wrap(err)
		}
		if newFolderIndex(all).isDescendant(folder.ID, target.ID) {
			return trace.BadParameter("cannot move folder into its own subtree")
		}

		return trace.Wrap(s.folderRepo.SetParent(ctx, folder.ID, target.ID, principal.UserID))
	})
}

// ListChildren возвращает живые подпапки и файлы папки. Обычному пользователю
// нужно право READ на саму папку.
func (s *FolderService) ListChildren(ctx context.Context, principal domain.Principal, parentID uuid.UUID) (*domain.FolderContent, error) {
	if principal.Role == domain.RoleBasic {
		ok, err := s.permSvc.Check(ctx, principal, parentID, true, domain.PermissionRead)
		if err != nil {
			return nil, trace.Wrap(err)
		}
		if !ok {
			return nil, trace.AccessDenied("you do not have read permission for this folder")
		}
	}

	if _, err := s.folderRepo.GetLive(ctx, parentID, principal.TownID); err != nil {
		return nil, trace.Wrap(err)
	}

	folders, err := s.folderRepo.ListLiveByParent(ctx, principal.TownID, &parentID)
	if err != nil {
		return nil, trace.Wrap(err)
	}

	files, err := s.fileRepo.ListLiveByFolders(ctx, []uuid.UUID{parentID})
	if err != nil {
		return nil, trace.Wrap(err)
	}

	return &domain.FolderContent{Folders: folders, Files: files}, nil
}

// ListRoots возвращает корневые папки города. Обычным пользователям выборка
// недоступна: для них потребовалась бы фильтрация по явным правам на чтение.
func (s *FolderService) ListRoots(ctx context.Context, principal domain.Principal) ([]domain.Folder, error) {
	if principal.Role == domain.RoleBasic {
		return nil, trace.AccessDenied("basic users cannot list root folders without explicit read permissions")
	}

	return s.folderRepo.ListLiveByParent(ctx, principal.TownID, nil)
}

// Tree строит полное дерево живых папок города
func (s *FolderService) Tree(ctx context.Context, principal domain.Principal) ([]domain.FolderTreeNode, error) {
	if principal.Role == domain.RoleBasic {
		return nil, trace.AccessDenied("basic users cannot view the full folder tree without explicit read permissions")
	}

	folders, err := s.folderRepo.ListLiveByTown(ctx, principal.TownID)
	if err != nil {
		return nil, trace.Wrap(err)
	}

	return buildTree(folders), nil
}

// buildTree собирает вложенную структуру из плоского списка папок
func buildTree(folders []domain.Folder) []domain.FolderTreeNode {
	ix := newFolderIndex(folders)

	var build func(f *domain.Folder) domain.FolderTreeNode
	build = func(f *domain.Folder) domain.FolderTreeNode {
		node := domain.FolderTreeNode{
			ID:       f.ID,
			Name:     f.Name,
			Favorite: f.Favorite,
			Children: []domain.FolderTreeNode{},
		}
		for _, child := range ix.children[f.ID] {
			node.Children = append(node.Children, build(child))
		}
		return node
	}

	roots := []domain.FolderTreeNode{}
	for i := range folders {
		if folders[i].ParentID == nil {
			roots = append(roots, build(&folders[i]))
		}
	}

	return roots
}
