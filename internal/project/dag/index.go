package dag

import (
	"fmt"
	"sort"

	"fortio.org/safecast"
)

type ModuleID uint32

// Node is one module and the ids it requires, in source order.
type Node struct {
	ID   string
	Deps []string
}

type ModuleIndex struct {
	NameToID map[string]ModuleID
	IDToName []string
}

// собрать уникальные id, sort.Strings, раздать ModuleID по порядку
func BuildIndex(nodes []Node) ModuleIndex {
	uniq := make(map[string]struct{}, len(nodes))
	for _, node := range nodes {
		if node.ID != "" {
			uniq[node.ID] = struct{}{}
		}
		for _, dep := range node.Deps {
			if dep == "" {
				continue
			}
			uniq[dep] = struct{}{}
		}
	}

	names := make([]string, 0, len(uniq))
	for name := range uniq {
		names = append(names, name)
	}
	sort.Strings(names)

	nameToID := make(map[string]ModuleID, len(names))
	for i, name := range names {
		nameToID[name] = mustModuleID(i)
	}

	return ModuleIndex{
		NameToID: nameToID,
		IDToName: names,
	}
}

func mustModuleID(i int) ModuleID {
	id, err := safecast.Conv[ModuleID](i)
	if err != nil {
		panic(fmt.Errorf("module id overflow: %w", err))
	}
	return id
}
