package service

import (
	"github.com/google/uuid"

	"docvault/internal/domain"
)

// folderIndex — одноразовый индекс родитель -> дети, построенный из свежей
// выборки папок города. Каскады обходят его в ширину, а не рекурсией: глубина
// дерева не ограничена, и признак "уже обработано" должен быть инвариантом
// цикла, а не состоянием стека вызовов. Индекс никогда не переживает операцию.
type folderIndex struct {
	byID     map[uuid.UUID]*domain.Folder
	children map[uuid.UUID][]*domain.Folder
}

func newFolderIndex(folders []domain.Folder) *folderIndex {
	ix := &folderIndex{
		byID:     make(map[uuid.UUID]*domain.Folder, len(folders)),
		children: make(map[uuid.UUID][]*domain.Folder),
	}

	for i := range folders {
		ix.byID[folders[i].ID] = &folders[i]
	}
	for i := range folders {
		f := &folders[i]
		if f.ParentID != nil {
			ix.children[*f.ParentID] = append(ix.children[*f.ParentID], f)
		}
	}

	return ix
}

// subtree собирает идентификаторы корня и всех его потомков, достижимых
// через папки, попавшие в выборку. Если выборка содержала только живые папки,
// обход не пройдет сквозь удаленную ветку — и наоборот.
func (ix *folderIndex) subtree(rootID uuid.UUID) []uuid.UUID {
	if _, ok := ix.byID[rootID]; !ok {
		return nil
	}

	collected := []uuid.UUID{rootID}
	queue := []uuid.UUID{rootID}
	visited := map[uuid.UUID]bool{rootID: true}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, child := range ix.children[current] {
			if visited[child.ID] {
				continue
			}
			visited[child.ID] = true
			collected = append(collected, child.ID)
			queue = append(queue, child.ID)
		}
	}

	return collected
}

// isDescendant сообщает, является ли node потомком ancestor: подъем по цепочке
// родителей от node до корня со сравнением идентификаторов.
func (ix *folderIndex) isDescendant(ancestorID, nodeID uuid.UUID) bool {
	visited := make(map[uuid.UUID]bool)
	current, ok := ix.byID[nodeID]
	for ok && !visited[current.ID] {
		visited[current.ID] = true
		if current.ParentID == nil {
			return false
		}
		if *current.ParentID == ancestorID {
			return true
		}
		current, ok = ix.byID[*current.ParentID]
	}
	return false
}

// ancestors перечисляет цепочку родителей папки снизу вверх, включая её саму
func (ix *folderIndex) ancestors(folderID uuid.UUID) []*domain.Folder {
	var chain []*domain.Folder

	visited := make(map[uuid.UUID]bool)
	current, ok := ix.byID[folderID]
	for ok && !visited[current.ID] {
		visited[current.ID] = true
		chain = append(chain, current)
		if current.ParentID == nil {
			break
		}
		current, ok = ix.byID[*current.ParentID]
	}

	return chain
}
