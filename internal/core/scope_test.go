package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"launchgraph/internal/types"
)

func testScope(t *testing.T) (*types.Configuration, *LaunchScope) {
	t.Helper()
	config := types.NewConfiguration("test", nil)
	launch := &types.LaunchFile{Path: "/ws/demo.launch", Dir: "/ws"}
	return config, newRootScope(config, launch, map[string]string{}, &paramArena{})
}

func testTemplate(name string) *types.NodeTemplate {
	return &types.NodeTemplate{Name: name, Package: &types.Package{Name: "demo", Path: "/ws/demo"}}
}

func TestForkIsolatesRemaps(t *testing.T) {
	_, root := testScope(t)
	root.declareRemap("chatter", "/loud")

	child := root.fork("sub", types.AlwaysCondition(), nil, nil)
	child.declareRemap("a", "b")

	require.Equal(t, "/loud", child.remaps["/chatter"])
	require.Equal(t, "/sub/b", child.remaps["/sub/a"])
	_, leaked := root.remaps["/sub/a"]
	require.False(t, leaked)
}

func TestForkAppendsCondition(t *testing.T) {
	_, root := testScope(t)
	guard := types.SymbolicCondition("$(arg x)", "demo.launch:3")

	child := root.fork("", guard, nil, nil)
	require.Equal(t, []types.Condition{guard}, child.conditions)
	require.Empty(t, root.conditions)

	grandchild := child.fork("", types.AlwaysCondition(), nil, nil)
	require.Equal(t, []types.Condition{guard}, grandchild.conditions)
}

func TestNodeScopePrivateNamespace(t *testing.T) {
	_, root := testScope(t)
	sub := root.fork("robot", types.AlwaysCondition(), nil, nil)

	_, nodeScope, previous := sub.enterNode(testTemplate("driver"), "drv", "", "", types.AlwaysCondition())
	require.Nil(t, previous)
	require.Equal(t, "/robot/drv", nodeScope.privateNS())
	require.Equal(t, "/robot/drv", nodeScope.resolveNamespace("~"))
	require.Equal(t, "/robot", nodeScope.resolveNamespace(""))
}

func TestEnterNodeRehomesPendingParams(t *testing.T) {
	_, root := testScope(t)
	raw := "1"
	require.NoError(t, root.stageParameter("~x", "", &raw, types.AlwaysCondition(), yamlDecoder{}))
	require.Empty(t, root.arena.staged)
	require.Len(t, root.pending, 1)

	_, _, _ = root.enterNode(testTemplate("talker"), "n", "", "", types.AlwaysCondition())
	require.Len(t, root.arena.staged, 1)
	require.Equal(t, "/n/x", root.arena.staged[0].Name.Full)
	require.Equal(t, 1, root.arena.staged[0].Value)

	// Pending entries survive, so the next node in this scope gets its own copy.
	require.Len(t, root.pending, 1)
	_, _, _ = root.enterNode(testTemplate("talker"), "m", "", "", types.AlwaysCondition())
	require.Len(t, root.arena.staged, 2)
	require.Equal(t, "/m/x", root.arena.staged[1].Name.Full)
}

func TestEnterNodeReportsDuplicate(t *testing.T) {
	config, root := testScope(t)
	template := testTemplate("talker")

	first, _, previous := root.enterNode(template, "n", "", "", types.AlwaysCondition())
	require.Nil(t, previous)

	second, _, previous := root.enterNode(template, "n", "", "", types.AlwaysCondition())
	require.Same(t, first, previous)
	require.Equal(t, 1, config.Nodes.Len())
	require.Len(t, template.Instances, 2)

	current, ok := config.Nodes.Get("/n")
	require.True(t, ok)
	require.Same(t, second, current)
}

func TestRecomputeTopicConditionsShortCircuit(t *testing.T) {
	guard := types.SymbolicCondition("$(arg cam)", "demo.launch:4")
	linkCond := types.SymbolicCondition("$(arg echo)", "demo.launch:9")

	condNode := &types.NodeInstance{Name: types.RosName{Full: "/a"}, Conditions: []types.Condition{guard}}
	freeNode := &types.NodeInstance{Name: types.RosName{Full: "/b"}}

	topic := &types.Topic{Name: types.RosName{Full: "/chatter"}}
	topic.Publishers = append(topic.Publishers, &types.TopicLink{Node: condNode, Topic: topic})
	topic.Subscribers = append(topic.Subscribers, &types.TopicLink{
		Node: freeNode, Topic: topic, Conditions: []types.Condition{linkCond},
	})

	// The unconditional node's link decides the topic outright.
	recomputeTopicConditions(topic)
	require.Equal(t, []types.Condition{linkCond}, topic.Conditions)

	// Without it, every link contributes node then link conditions in order.
	topic.Subscribers[0].Node = condNode
	recomputeTopicConditions(topic)
	require.Equal(t, []types.Condition{guard, guard, linkCond}, topic.Conditions)
}

func TestRecomputeServiceConditionsServerFirst(t *testing.T) {
	guard := types.SymbolicCondition("$(arg srv)", "demo.launch:5")
	condNode := &types.NodeInstance{Name: types.RosName{Full: "/a"}, Conditions: []types.Condition{guard}}
	freeNode := &types.NodeInstance{Name: types.RosName{Full: "/b"}}

	service := &types.Service{Name: types.RosName{Full: "/lookup"}}
	service.Server = &types.ServiceLink{Node: condNode, Service: service}
	service.Clients = append(service.Clients, &types.ServiceLink{Node: freeNode, Service: service})

	recomputeServiceConditions(service)
	require.Empty(t, service.Conditions)

	service.Clients[0].Node = condNode
	recomputeServiceConditions(service)
	require.Equal(t, []types.Condition{guard, guard}, service.Conditions)
}

func TestDeleteParameter(t *testing.T) {
	config, root := testScope(t)
	raw := "1"
	require.NoError(t, root.stageParameter("/a", "", &raw, types.AlwaysCondition(), yamlDecoder{}))

	require.Error(t, root.deleteParameter("/missing", "", types.AlwaysCondition()))

	// A guarded delete is a no-op.
	require.NoError(t, root.deleteParameter("/a", "", types.SymbolicCondition("$(arg d)", "demo.launch:2")))
	require.True(t, root.arenaHas("/a"))

	guarded := root.fork("", types.SymbolicCondition("$(arg g)", "demo.launch:3"), nil, nil)
	require.NoError(t, guarded.deleteParameter("/a", "", types.AlwaysCondition()))
	require.True(t, root.arenaHas("/a"))

	require.NoError(t, root.deleteParameter("/a", "", types.AlwaysCondition()))
	require.False(t, root.arenaHas("/a"))
	require.Equal(t, 0, config.Parameters.Len())
}

func TestMaterializeTopicsResolvesCallSites(t *testing.T) {
	config, root := testScope(t)
	template := testTemplate("talker")
	template.Advertise = []types.CallSite{{Name: "chatter", Type: "std_msgs/String", QueueSize: 10}}

	_, nodeScope, _ := root.enterNode(template, "n", "", "", types.AlwaysCondition())
	nodeScope.materializeTopics(context.Background(), map[string]*types.Topic{})

	topic, ok := config.Topics.Get("/chatter")
	require.True(t, ok)
	require.Equal(t, "std_msgs/String", topic.Type)
	require.Len(t, topic.Publishers, 1)
	require.Equal(t, 10, topic.Publishers[0].QueueSize)
	require.Equal(t, "/chatter", topic.Publishers[0].GivenName.Full)
	require.Empty(t, topic.Conditions)
}
